package access

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ResourceCategories    = "categories"
	ResourceProducts      = "products"
	ResourceManufacturers = "manufacturers"
	ResourceCustomers     = "customers"
	ResourceOrders        = "orders"
	ResourceOrderItems    = "order-items"
	ResourceReviews       = "reviews"
)

// Policy is the per-resource part of access control.
type Policy struct {
	PublicRead bool `yaml:"public_read" json:"public_read"`
}

type Policies map[string]Policy

// DefaultPolicies opens catalog and review reads to everyone and gates the rest.
func DefaultPolicies() Policies {
	return Policies{
		ResourceCategories:    {PublicRead: true},
		ResourceProducts:      {PublicRead: true},
		ResourceManufacturers: {PublicRead: true},
		ResourceReviews:       {PublicRead: true},
		ResourceCustomers:     {},
		ResourceOrders:        {},
		ResourceOrderItems:    {},
	}
}

// For returns the policy of resource. Unknown resources are fully gated.
func (ps Policies) For(resource string) Policy {
	return ps[resource]
}

type policyFile struct {
	Resources map[string]Policy `yaml:"resources"`
}

// LoadPolicies applies the overrides in the YAML file at path to the defaults.
// An empty path returns the defaults.
func LoadPolicies(path string) (Policies, error) {
	policies := DefaultPolicies()
	if path == "" {
		return policies, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read policy file")
	}
	return ParsePolicies(data, policies)
}

func ParsePolicies(data []byte, base Policies) (Policies, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse policy file")
	}
	out := Policies{}
	for name, p := range base {
		out[name] = p
	}
	for name, p := range file.Resources {
		if _, ok := out[name]; !ok {
			return nil, errors.Errorf("policy file names unknown resource %q", name)
		}
		out[name] = p
	}
	return out, nil
}
