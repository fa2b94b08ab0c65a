package chooser

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UploadPrefix namespaces the upload form fields inside the chooser page.
const UploadPrefix = "document-chooser-upload"

// Prefixed field names as they appear in the submitted form.
const (
	FieldTitle = UploadPrefix + "-title"
	FieldFile  = UploadPrefix + "-file"
	FieldTags  = UploadPrefix + "-tags"
)

const maxTitleLength = 255

// UploadForm is bound from a multipart POST.
type UploadForm struct {
	Title string                `form:"document-chooser-upload-title" binding:"required,max=255"`
	File  *multipart.FileHeader `form:"document-chooser-upload-file" binding:"required"`
	Tags  string                `form:"document-chooser-upload-tags" binding:"max=1024"`
}

// UploadRules are the checks applied on top of field validation.
type UploadRules struct {
	MaxBytes   int64
	Extensions []string // lowercase, no leading dot; empty allows any
}

// FormView is what the template needs to render the form and its errors.
type FormView struct {
	Prefix         string
	Title          string
	Tags           string
	Errors         map[string][]string
	NonFieldErrors []string
}

// HasErrors reports whether any error was recorded.
func (f *FormView) HasErrors() bool {
	return len(f.Errors) > 0 || len(f.NonFieldErrors) > 0
}

// FieldErrors returns the messages for a prefixed field name.
func (f *FormView) FieldErrors(field string) []string {
	return f.Errors[field]
}

func (f *FormView) addError(field, msg string) {
	if f.Errors == nil {
		f.Errors = make(map[string][]string)
	}
	f.Errors[field] = append(f.Errors[field], msg)
}

func emptyForm() *FormView {
	return &FormView{Prefix: UploadPrefix}
}

// bindUpload binds and validates the upload. The returned view always echoes
// the submitted values; ok is false when the view carries errors.
func bindUpload(c *gin.Context, rules UploadRules) (UploadForm, *FormView, bool) {
	view := emptyForm()
	if rules.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, rules.MaxBytes)
	}

	var form UploadForm
	err := c.ShouldBind(&form)
	view.Title = strings.TrimSpace(c.PostForm(FieldTitle))
	view.Tags = c.PostForm(FieldTags)

	if err != nil {
		var verrs validator.ValidationErrors
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &verrs):
			for _, fe := range verrs {
				field, msg := describeFieldError(fe)
				view.addError(field, msg)
			}
		case errors.As(err, &tooBig):
			view.addError(FieldFile, fmt.Sprintf("This file is too big. Maximum filesize %s.", humanBytes(rules.MaxBytes)))
		default:
			view.NonFieldErrors = append(view.NonFieldErrors, "The submitted form could not be read.")
		}
		return form, view, false
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		view.addError(FieldTitle, "This field is required.")
	}
	if form.File.Size == 0 {
		view.addError(FieldFile, "The submitted file is empty.")
	}
	if rules.MaxBytes > 0 && form.File.Size > rules.MaxBytes {
		view.addError(FieldFile, fmt.Sprintf("This file is too big. Maximum filesize %s.", humanBytes(rules.MaxBytes)))
	}
	if len(rules.Extensions) > 0 && !allowedExtension(form.File.Filename, rules.Extensions) {
		view.addError(FieldFile, fmt.Sprintf("Not a supported document format. Supported formats: %s.", strings.Join(rules.Extensions, ", ")))
	}
	return form, view, !view.HasErrors()
}

func describeFieldError(fe validator.FieldError) (string, string) {
	field := UploadPrefix + "-" + strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field, "This field is required."
	case "max":
		if fe.Field() == "Title" {
			return field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", maxTitleLength, len([]rune(fmt.Sprint(fe.Value()))))
		}
		return field, fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return field, "Enter a valid value."
	}
}

func allowedExtension(name string, allowed []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
