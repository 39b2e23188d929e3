package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/predict"
	"github.com/iequus/iequus_backend/pkg/reqctx"
	"github.com/iequus/iequus_backend/pkg/validate"
)

var errMalformedBody = fmt.Errorf("%w: malformed request body", validate.ErrInvalid)

// form is a request body read from multipart/form-data, a urlencoded form or
// JSON. Values are kept as strings so every encoding goes through the same
// parsers. The first parse failure is kept and reported by err.
type form struct {
	values map[string]string
	files  map[string]*multipart.FileHeader
	opened []io.Closer
	first  error
}

func readForm(c fiber.Ctx) (*form, error) {
	f := &form{values: map[string]string{}, files: map[string]*multipart.FileHeader{}}

	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, errMalformedBody
		}
		for k, vs := range mf.Value {
			if len(vs) > 0 {
				f.values[k] = vs[0]
			}
		}
		for k, fhs := range mf.File {
			if len(fhs) > 0 {
				f.files[k] = fhs[0]
			}
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			f.values[string(k)] = string(v)
		})
	case len(bytes.TrimSpace(c.Body())) == 0:
	default:
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, errMalformedBody
		}
		for k, v := range raw {
			s, err := jsonValue(v)
			if err != nil {
				return nil, errMalformedBody
			}
			f.values[k] = s
		}
	}
	return f, nil
}

// jsonValue flattens a decoded JSON value; null becomes the empty string and
// nested values are re-encoded.
func jsonValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	default:
		b, err := json.Marshal(t)
		return string(b), err
	}
}

func (f *form) fail(err error) {
	if f.first == nil {
		f.first = err
	}
}

func (f *form) err() error { return f.first }

// close releases every opened upload.
func (f *form) close() {
	for _, c := range f.opened {
		_ = c.Close()
	}
}

func (f *form) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// blank reports a key that is present with an empty value.
func (f *form) blank(key string) bool {
	v, ok := f.values[key]
	return ok && strings.TrimSpace(v) == ""
}

func (f *form) str(key string) string {
	return f.values[key]
}

func (f *form) optString(key string) *string {
	v, ok := f.values[key]
	if !ok {
		return nil
	}
	return &v
}

func (f *form) optInt(key string) *int {
	if !f.has(key) || f.blank(key) {
		return nil
	}
	n, err := validate.Int(key, f.values[key])
	if err != nil {
		f.fail(err)
		return nil
	}
	return &n
}

func (f *form) optFloat(key string) *float64 {
	if !f.has(key) || f.blank(key) {
		return nil
	}
	n, err := validate.Float(key, f.values[key])
	if err != nil {
		f.fail(err)
		return nil
	}
	return &n
}

func (f *form) optID(key string) *int64 {
	if !f.has(key) || f.blank(key) {
		return nil
	}
	id, err := validate.ID(key, f.values[key])
	if err != nil {
		f.fail(err)
		return nil
	}
	return &id
}

// id reads a required identifier; absence yields zero and lets the service
// reject it.
func (f *form) id(key string) int64 {
	if p := f.optID(key); p != nil {
		return *p
	}
	return 0
}

func (f *form) optBool(key string) *bool {
	if !f.has(key) || f.blank(key) {
		return nil
	}
	b, err := validate.Bool(key, f.values[key])
	if err != nil {
		f.fail(err)
		return nil
	}
	return &b
}

func (f *form) boolean(key string) bool {
	if p := f.optBool(key); p != nil {
		return *p
	}
	return false
}

// remove reads the remove_<field> flag of a file field.
func (f *form) remove(field string) bool {
	return f.boolean("remove_" + field)
}

// upload opens the file sent under key, nil when none was sent.
func (f *form) upload(key string) *media.Upload {
	fh, ok := f.files[key]
	if !ok || fh.Size == 0 {
		return nil
	}
	file, err := fh.Open()
	if err != nil {
		f.fail(fmt.Errorf("%w: cannot read %s", validate.ErrInvalid, key))
		return nil
	}
	f.opened = append(f.opened, file)
	return &media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     file,
	}
}

// points reads a JSON list of {x, y} landmarks. ok is false when the key is
// absent.
func (f *form) points(key string) (points []predict.Point, ok bool) {
	if !f.has(key) {
		return nil, false
	}
	raw := strings.TrimSpace(f.values[key])
	if raw == "" || raw == "null" {
		return []predict.Point{}, true
	}
	points, err := predict.DecodePoints([]byte(raw))
	if err != nil {
		f.fail(fmt.Errorf("%w: %s must be a JSON list of {x, y} points", validate.ErrInvalid, key))
		return nil, false
	}
	return points, true
}

// pathID parses the named route parameter as a positive identifier.
func pathID(c fiber.Ctx, name string) (int64, error) {
	return validate.ID(name, c.Params(name))
}

// requester is the authenticated veterinarian set by the auth middleware.
func requester(c fiber.Ctx) (int64, bool) {
	return reqctx.VeterinarianIDFromContext(c.Context())
}
