package resourceControllers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
	"github.com/junaidrashid-git/shop-api/crud"
)

// Paging bounds the page_size a client may ask for.
type Paging struct {
	Default int
	Max     int
}

// Handlers serves list, retrieve, create, update, patch and delete for one repository.
type Handlers[T any] struct {
	repo   *crud.Repository[T]
	paging Paging
}

func New[T any](repo *crud.Repository[T], paging Paging) *Handlers[T] {
	return &Handlers[T]{repo: repo, paging: paging}
}

// Register mounts every handler on g.
func (h *Handlers[T]) Register(g *gin.RouterGroup) {
	h.RegisterReads(g)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}

// RegisterReads mounts list and retrieve only.
func (h *Handlers[T]) RegisterReads(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Retrieve)
}

// RegisterReadOnly mounts the reads and answers every write with 405.
func (h *Handlers[T]) RegisterReadOnly(g *gin.RouterGroup) {
	h.RegisterReads(g)
	g.POST("", MethodNotAllowed)
	g.PUT("/:id", MethodNotAllowed)
	g.PATCH("/:id", MethodNotAllowed)
	g.DELETE("/:id", MethodNotAllowed)
}

func MethodNotAllowed(c *gin.Context) {
	respond.Error(c, apperr.ErrMethodNotAllowed)
}

func (h *Handlers[T]) List(c *gin.Context) {
	page, pageSize, ok := ParsePaging(c, h.paging)
	if !ok {
		return
	}
	params := crud.ListParams{
		Search:   c.Query("search"),
		Filters:  map[string]string{},
		Page:     page,
		PageSize: pageSize,
	}
	for _, f := range h.repo.Schema().Filters {
		if v, ok := c.GetQuery(f.Param); ok {
			params.Filters[f.Param] = v
		}
	}

	result, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, PageBody(c, result))
}

func (h *Handlers[T]) Retrieve(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	item, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers[T]) Create(c *gin.Context) {
	item := new(T)
	if err := c.ShouldBindJSON(item); err != nil {
		respond.Invalid(c, err)
		return
	}
	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update replaces the whole record. Omitted fields are written as their zero value.
func (h *Handlers[T]) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	item := new(T)
	if err := c.ShouldBindJSON(item); err != nil {
		respond.Invalid(c, err)
		return
	}
	h.save(c, id, item)
}

// Patch overlays the request body on the stored record.
func (h *Handlers[T]) Patch(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	item, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if err := c.ShouldBindJSON(item); err != nil {
		respond.Invalid(c, err)
		return
	}
	h.save(c, id, item)
}

func (h *Handlers[T]) save(c *gin.Context, id uint, item *T) {
	if err := h.repo.Update(c.Request.Context(), id, item); err != nil {
		respond.Error(c, err)
		return
	}
	saved, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handlers[T]) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ParseID reads a numeric path parameter, answering 404 when it is not one.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respond.Error(c, apperr.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

// ParsePaging reads page and page_size, clamping page_size to the configured maximum.
func ParsePaging(c *gin.Context, paging Paging) (int, int, bool) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.Error(c, apperr.ErrNotFound)
			return 0, 0, false
		}
		page = n
	}
	size := paging.Default
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.BadRequest(c, "Invalid page_size")
			return 0, 0, false
		}
		size = n
	}
	if paging.Max > 0 && size > paging.Max {
		size = paging.Max
	}
	return page, size, true
}

// PageBody renders a page as {count, next, previous, results}.
func PageBody[T any](c *gin.Context, page *crud.Page[T]) gin.H {
	body := gin.H{
		"count":    page.Count,
		"next":     nil,
		"previous": nil,
		"results":  page.Results,
	}
	if page.HasNext() {
		body["next"] = pageURL(c, page.Page+1)
	}
	if page.HasPrevious() {
		body["previous"] = pageURL(c, page.Page-1)
	}
	return body
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
