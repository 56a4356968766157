package forms

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bindForm(t *testing.T, dst interface{}, values url.Values) error {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req

	return c.ShouldBind(dst)
}

func TestPostForm_Valid(t *testing.T) {
	var form PostForm
	err := bindForm(t, &form, url.Values{
		"title":    {"A Title"},
		"subtitle": {"A Subtitle"},
		"img_url":  {"https://example.com/cover.jpg"},
		"body":     {"Some content"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "A Title", form.Title)
	assert.Equal(t, "https://example.com/cover.jpg", form.ImgURL)
}

func TestPostForm_MissingTitle(t *testing.T) {
	var form PostForm
	err := bindForm(t, &form, url.Values{
		"subtitle": {"A Subtitle"},
		"img_url":  {"https://example.com/cover.jpg"},
		"body":     {"Some content"},
	})

	assert.Error(t, err)
	messages := ErrorMessages(err)
	assert.Equal(t, "This field is required", messages["Title"])
}

func TestPostForm_ImageURLShape(t *testing.T) {
	var form PostForm
	err := bindForm(t, &form, url.Values{
		"title":    {"A Title"},
		"subtitle": {"A Subtitle"},
		"img_url":  {"not-a-url"},
		"body":     {"Some content"},
	})

	assert.Error(t, err)
	messages := ErrorMessages(err)
	assert.Equal(t, "Please enter a valid URL", messages["ImgURL"])
}

func TestRegisterForm_EmailShape(t *testing.T) {
	var form RegisterForm
	err := bindForm(t, &form, url.Values{
		"email":    {"not-an-email"},
		"password": {"secret"},
		"name":     {"Alice"},
	})

	assert.Error(t, err)
	messages := ErrorMessages(err)
	assert.Equal(t, "Please enter a valid email address", messages["Email"])
}

func TestRegisterForm_AllFieldsRequired(t *testing.T) {
	var form RegisterForm
	err := bindForm(t, &form, url.Values{})

	assert.Error(t, err)
	messages := ErrorMessages(err)
	assert.Equal(t, "This field is required", messages["Email"])
	assert.Equal(t, "This field is required", messages["Password"])
	assert.Equal(t, "This field is required", messages["Name"])
}

func TestCommentForm_EmptyBody(t *testing.T) {
	var form CommentForm
	err := bindForm(t, &form, url.Values{"body": {""}})

	assert.Error(t, err)
	messages := ErrorMessages(err)
	assert.Equal(t, "This field is required", messages["Body"])
}

func TestContactForm_Valid(t *testing.T) {
	var form ContactForm
	err := bindForm(t, &form, url.Values{
		"name":    {"Alice"},
		"email":   {"alice@example.com"},
		"message": {"Hello there"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Hello there", form.Message)
}
