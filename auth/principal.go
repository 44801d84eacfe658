package auth

import "github.com/junaidrashid-git/shop-api/models"

// Principal is the authenticated actor of a request.
type Principal struct {
	AccountID   uint     `json:"account_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsSuperuser bool     `json:"is_superuser"`
	Groups      []string `json:"groups"`
}

func PrincipalFromAccount(a *models.Account) *Principal {
	p := &Principal{
		AccountID:   a.ID,
		Username:    a.Username,
		Email:       a.Email,
		IsSuperuser: a.IsSuperuser,
		Groups:      make([]string, 0, len(a.Groups)),
	}
	for _, g := range a.Groups {
		p.Groups = append(p.Groups, g.Name)
	}
	return p
}

func (p *Principal) InGroup(name string) bool {
	for _, g := range p.Groups {
		if g == name {
			return true
		}
	}
	return false
}
