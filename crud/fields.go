package crud

import (
	"reflect"
	"time"
)

// resetServerFields clears the fields the database assigns, so a client cannot choose them.
func resetServerFields(item interface{}) {
	v := reflect.ValueOf(item)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	if f := v.FieldByName("ID"); f.IsValid() && f.CanSet() && f.Kind() == reflect.Uint {
		f.SetUint(0)
	}
	for _, name := range []string{"CreatedAt", "UpdatedAt"} {
		if f := v.FieldByName(name); f.IsValid() && f.CanSet() && f.Type() == reflect.TypeOf(time.Time{}) {
			f.Set(reflect.ValueOf(time.Time{}))
		}
	}
}
