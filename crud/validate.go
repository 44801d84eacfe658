package crud

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// The field rules live in `binding` tags and run on gin's validator, both when a request
// is bound and when a repository writes. Registration happens once for the process.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	// money: a non-negative amount with at most two decimal places
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative() && d.Equal(d.Round(2))
	})
}

// FieldErrors turns validator failures into an apperr.ValidationError keyed by json name.
// It returns nil for any other error.
func FieldErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	invalid := apperr.NewValidationError()
	for _, fe := range errs {
		invalid.Add(fe.Field(), fieldMessage(fe))
	}
	return invalid.Err()
}

func fieldMessage(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if text {
			return "Ensure this field has no more than " + fe.Param() + " characters."
		}
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "min":
		if text {
			return "Ensure this field has at least " + fe.Param() + " characters."
		}
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "gte":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "email":
		return "Enter a valid email address."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "money":
		return "Ensure this is a non-negative amount with no more than 2 decimal places."
	}
	return "Enter a valid value."
}

// Checker accumulates field errors for one write: the struct's binding rules plus
// the checks that need the database.
type Checker struct {
	db  *gorm.DB
	err *apperr.ValidationError
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db, err: apperr.NewValidationError()}
}

// Struct runs the binding rules of v.
func (c *Checker) Struct(v interface{}) {
	err := binding.Validator.ValidateStruct(v)
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		c.err.Add("non_field_errors", err.Error())
		return
	}
	for _, fe := range errs {
		c.err.Add(fe.Field(), fieldMessage(fe))
	}
}

// Unique flags value when another row of model (other than excludeID) already holds it.
func (c *Checker) Unique(field string, model interface{}, column string, value interface{}, excludeID uint) {
	var count int64
	q := c.db.Model(model).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		c.err.Add(field, "Could not be checked.")
		return
	}
	if count > 0 {
		c.err.Add(field, "A record with this "+field+" already exists.")
	}
}

// Exists flags id when no row of model has it.
func (c *Checker) Exists(field string, model interface{}, id uint) {
	if id == 0 {
		c.err.Add(field, "This field is required.")
		return
	}
	var count int64
	if err := c.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		c.err.Add(field, "Could not be checked.")
		return
	}
	if count == 0 {
		c.err.Add(field, "Invalid pk \""+strconv.Itoa(int(id))+"\" - object does not exist.")
	}
}

func (c *Checker) Add(field, msg string) {
	c.err.Add(field, msg)
}

func (c *Checker) Err() error {
	return c.err.Err()
}
