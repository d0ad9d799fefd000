package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryInt reads the optional integer query param name.
func queryInt(ctx echo.Context, name string) (*int, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be an integer"})
	}
	return &n, nil
}

// strictJSONBinder decodes JSON request bodies, rejecting the fields the target does not declare.
type strictJSONBinder struct{}

var _ echo.Binder = strictJSONBinder{} // interface compliance check

func (strictJSONBinder) Bind(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	if req.ContentLength == 0 {
		return core.NewValidationError(errors.New("request body is empty"))
	}
	if ctype := req.Header.Get(echo.HeaderContentType); !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type must be "+echo.MIMEApplicationJSON)
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return core.NewValidationError(errors.New("request body must hold a single JSON object"))
	}
	return nil
}

func decodeError(err error) error {
	const unknownField = "json: unknown field "

	switch e := err.(type) {
	case *json.UnmarshalTypeError:
		if e.Field != "" {
			return core.NewValidationError(nil, core.FieldError{Field: e.Field, Error: "must be of type " + e.Type.String()})
		}
	case *json.SyntaxError:
		return core.NewValidationError(errors.Errorf("malformed JSON at offset %d", e.Offset))
	}
	if msg := err.Error(); strings.HasPrefix(msg, unknownField) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownField), `"`)
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "unknown field"})
	}
	return core.NewValidationError(errors.Wrap(err, "invalid request body"))
}
