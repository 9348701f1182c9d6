package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/collection"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
	"github.com/trackshelf/trackshelf-backend/pkg/owner"
)

// itemRequest is the wire form of an item. Dates travel as DD.MM.YYYY strings
// so malformed input is reported per field instead of failing the decode.
type itemRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required,max=200"`
	Quantity     int    `json:"quantity" validate:"min=1"`
	Unit         string `json:"unit" validate:"required,shelf_unit"`
	Category     string `json:"category" validate:"required,shelf_category"`
	AcquiredDate string `json:"acquired_date" validate:"required,ddmmyyyy"`
	ExpiryDate   string `json:"expiry_date" validate:"omitempty,ddmmyyyy"`
	ImageURL     string `json:"image_url" validate:"omitempty,max=2048,image_ref"`
}

func (r itemRequest) toItem() domain.Item {
	item := domain.Item{
		ID:       r.ID,
		Name:     r.Name,
		Quantity: r.Quantity,
		Unit:     strings.TrimSpace(r.Unit),
		Category: strings.TrimSpace(r.Category),
		ImageURL: r.ImageURL,
	}
	// Both dates passed validation.
	item.AcquiredDate, _ = domain.ParseDate(strings.TrimSpace(r.AcquiredDate))
	if exp := strings.TrimSpace(r.ExpiryDate); exp != "" {
		d, _ := domain.ParseDate(exp)
		item.ExpiryDate = &d
	}
	return item
}

type replaceItemsRequest struct {
	Items []itemRequest `json:"items" validate:"dive"`
}

type thresholdsRequest struct {
	SoonDays         int `json:"soon_days"`
	ExpiredGraceDays int `json:"expired_grace_days"`
}

type textRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// newValidator registers the shelf tags against the catalog
func newValidator(catalog *domain.Catalog) *httputil.Validator {
	v := httputil.NewValidator()
	// Registration only fails for empty tags or nil funcs.
	_ = v.Register("shelf_unit", func(s string) bool { return catalog.HasUnit(strings.TrimSpace(s)) })
	_ = v.Register("shelf_category", func(s string) bool { return catalog.HasCategory(strings.TrimSpace(s)) })
	_ = v.Register("ddmmyyyy", func(s string) bool {
		_, err := domain.ParseDate(strings.TrimSpace(s))
		return err == nil
	})
	_ = v.Register("image_ref", isImageRef)
	return v
}

// isImageRef accepts what the upload service hands out: a root-relative path
// such as /uploads/abc.jpg, or an absolute http(s) URL.
func isImageRef(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "//") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "":
		return strings.HasPrefix(u.Path, "/")
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

func requestOwner(r *http.Request) (string, error) {
	id, err := owner.OwnerID(r.Context())
	if err != nil {
		return "", errors.Unauthorized("missing owner")
	}
	return id, nil
}

// parseQuery reads filter and sort parameters of the item list:
// name (alias q), category, unit, warn_level, expiry_from, expiry_to, quantity_min,
// quantity_max and sort.
func parseQuery(r *http.Request) (collection.Query, error) {
	values := r.URL.Query()
	var q collection.Query

	sortMode, err := collection.ParseSortMode(values.Get("sort"))
	if err != nil {
		return q, errors.BadRequest(err.Error())
	}
	q.Sort = sortMode

	q.Filter.Name = strings.TrimSpace(values.Get("name"))
	if q.Filter.Name == "" {
		q.Filter.Name = strings.TrimSpace(values.Get("q"))
	}
	q.Filter.Category = strings.TrimSpace(values.Get("category"))
	q.Filter.Unit = strings.TrimSpace(values.Get("unit"))

	if raw := values.Get("warn_level"); raw != "" {
		level, err := domain.ParseWarnLevel(raw)
		if err != nil {
			return q, errors.BadRequest(err.Error())
		}
		q.Filter.WarnLevel = level
	}

	if q.Filter.ExpiryFrom, err = dateParam(values.Get("expiry_from"), "expiry_from"); err != nil {
		return q, err
	}
	if q.Filter.ExpiryTo, err = dateParam(values.Get("expiry_to"), "expiry_to"); err != nil {
		return q, err
	}
	if q.Filter.QuantityMin, err = intParam(values.Get("quantity_min"), "quantity_min"); err != nil {
		return q, err
	}
	if q.Filter.QuantityMax, err = intParam(values.Get("quantity_max"), "quantity_max"); err != nil {
		return q, err
	}
	return q, nil
}

func dateParam(raw, name string) (*domain.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, errors.InvalidDate(name, raw)
	}
	return &d, nil
}

func intParam(raw, name string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.Validation(map[string]string{name: "must be a whole number"})
	}
	return &n, nil
}
