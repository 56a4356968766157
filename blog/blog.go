package blog

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"inkwell/auth"
	"inkwell/common"
	emailpkg "inkwell/email"
	"inkwell/forms"
	"inkwell/models"
)

type BlogModule struct {
	db   *gorm.DB
	auth *auth.AuthModule
	mail *emailpkg.ContactService
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

func NewBlogModule(db *gorm.DB, authModule *auth.AuthModule, mail *emailpkg.ContactService) *BlogModule {
	return &BlogModule{db: db, auth: authModule, mail: mail}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", b.index)
	router.GET("/post/:id", b.showPost)
	router.POST("/post/:id", b.addComment)
	router.GET("/about", b.about)
	router.GET("/contact", b.contact)
	router.POST("/contact", b.contactPost)
	router.GET("/sitemap.xml", b.sitemap)

	adminRoutes := router.Group("/")
	adminRoutes.Use(b.auth.RequireAdmin)
	{
		adminRoutes.GET("/new-post", b.newPost)
		adminRoutes.POST("/new-post", b.createPost)
		adminRoutes.GET("/edit-post/:id", b.editPost)
		adminRoutes.POST("/edit-post/:id", b.updatePost)
		adminRoutes.GET("/delete/:id", b.deletePost)
	}
}

func (b *BlogModule) getPost(id string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := b.db.Preload("Author").First(&post, "id = ?", id).Error
	return &post, err
}

func (b *BlogModule) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"status": http.StatusNotFound,
		"error":  "Post not found",
	})
}

func (b *BlogModule) index(c *gin.Context) {
	var posts []models.BlogPost
	if err := b.db.Preload("Author").Find(&posts).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not load posts",
		})
		return
	}

	user, _ := b.auth.CurrentUser(c)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"posts":   posts,
		"user":    user,
		"flashes": common.Flashes(c),
	})
}

func (b *BlogModule) showPost(c *gin.Context) {
	post, err := b.getPost(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	b.renderPost(c, post, nil)
}

func (b *BlogModule) renderPost(c *gin.Context, post *models.BlogPost, formErrors map[string]string) {
	var comments []models.Comment
	if err := b.db.Preload("Author").Where("post_id = ?", post.ID).Find(&comments).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not load comments",
		})
		return
	}

	type renderedComment struct {
		models.Comment
		TextHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, comment := range comments {
		rendered[i] = renderedComment{
			Comment:  comment,
			TextHTML: template.HTML(renderMarkdown(comment.Text)),
		}
	}

	user, _ := b.auth.CurrentUser(c)

	if formErrors == nil {
		formErrors = map[string]string{}
	}

	status := http.StatusOK
	if len(formErrors) > 0 {
		status = http.StatusBadRequest
	}

	c.HTML(status, "post.html", gin.H{
		"post":     post,
		"bodyHTML": template.HTML(renderMarkdown(post.Body)),
		"comments": rendered,
		"user":     user,
		"errors":   formErrors,
		"flashes":  common.Flashes(c),
	})
}

func (b *BlogModule) addComment(c *gin.Context) {
	post, err := b.getPost(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	user, ok := b.auth.CurrentUser(c)
	if !ok {
		common.Flash(c, "Sorry, you need to log in first!")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form forms.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		b.renderPost(c, post, forms.ErrorMessages(err))
		return
	}

	// Fully formed before the insert: author, post and text in one row.
	comment := models.Comment{
		AuthorID: user.ID,
		PostID:   post.ID,
		Text:     form.Body,
	}

	if err := b.db.Create(&comment).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not save comment",
		})
		return
	}

	c.Redirect(http.StatusFound, "/post/"+c.Param("id"))
}

func (b *BlogModule) newPost(c *gin.Context) {
	c.HTML(http.StatusOK, "make-post.html", gin.H{
		"heading": "New Post",
		"action":  "/new-post",
		"errors":  map[string]string{},
		"form":    forms.PostForm{},
	})
}

func (b *BlogModule) createPost(c *gin.Context) {
	var form forms.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "make-post.html", gin.H{
			"heading": "New Post",
			"action":  "/new-post",
			"errors":  forms.ErrorMessages(err),
			"form":    form,
		})
		return
	}

	userID := c.GetInt("user_id")

	post := models.BlogPost{
		AuthorID: userID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     time.Now().Format("January 02, 2006"),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}

	if err := b.db.Create(&post).Error; err != nil {
		// Only a duplicate title is the author's fault.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.HTML(http.StatusBadRequest, "make-post.html", gin.H{
				"heading": "New Post",
				"action":  "/new-post",
				"errors":  map[string]string{"Title": "A post with this title already exists"},
				"form":    form,
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not create post",
		})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (b *BlogModule) editPost(c *gin.Context) {
	post, err := b.getPost(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	c.HTML(http.StatusOK, "make-post.html", gin.H{
		"heading": "Edit Post",
		"action":  "/edit-post/" + c.Param("id"),
		"errors":  map[string]string{},
		"form": forms.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
	})
}

func (b *BlogModule) updatePost(c *gin.Context) {
	post, err := b.getPost(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	var form forms.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "make-post.html", gin.H{
			"heading": "Edit Post",
			"action":  "/edit-post/" + c.Param("id"),
			"errors":  forms.ErrorMessages(err),
			"form":    form,
		})
		return
	}

	post.Title = form.Title
	post.Subtitle = form.Subtitle
	post.ImgURL = form.ImgURL
	post.Body = form.Body

	if err := b.db.Save(post).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not update post",
		})
		return
	}

	c.Redirect(http.StatusFound, "/post/"+c.Param("id"))
}

func (b *BlogModule) deletePost(c *gin.Context) {
	post, err := b.getPost(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	// A post's comments go with it, in the same transaction.
	err = b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BlogPost{}, post.ID).Error
	})
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not delete post",
		})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (b *BlogModule) about(c *gin.Context) {
	user, _ := b.auth.CurrentUser(c)
	c.HTML(http.StatusOK, "about.html", gin.H{"user": user})
}

func (b *BlogModule) contact(c *gin.Context) {
	user, _ := b.auth.CurrentUser(c)
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"user":    user,
		"flashes": common.Flashes(c),
		"errors":  map[string]string{},
		"form":    forms.ContactForm{},
	})
}

func (b *BlogModule) contactPost(c *gin.Context) {
	var form forms.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		user, _ := b.auth.CurrentUser(c)
		c.HTML(http.StatusBadRequest, "contact.html", gin.H{
			"user":    user,
			"errors":  forms.ErrorMessages(err),
			"form":    form,
			"flashes": common.Flashes(c),
		})
		return
	}

	if err := b.mail.SendContactMessage(form.Name, form.Email, form.Message); err != nil {
		common.Flash(c, "Sorry, your message could not be sent. Please try again later.")
		c.Redirect(http.StatusFound, "/contact")
		return
	}

	common.Flash(c, "Thanks, your message has been sent!")
	c.Redirect(http.StatusFound, "/contact")
}

func (b *BlogModule) sitemap(c *gin.Context) {
	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "http://localhost:8080"
	}
	domain = strings.TrimSuffix(domain, "/")

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	for _, path := range []string{"/", "/about", "/contact"} {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + domain + path + "</loc>\n")
		sitemap.WriteString("    <changefreq>weekly</changefreq>\n")
		sitemap.WriteString("  </url>\n")
	}

	var posts []models.BlogPost
	b.db.Find(&posts)

	for _, post := range posts {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + domain + "/post/" + strconv.Itoa(post.ID) + "</loc>\n")
		sitemap.WriteString("    <changefreq>monthly</changefreq>\n")
		sitemap.WriteString("  </url>\n")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// On render failure, fall back to the raw content
		return content
	}
	return buf.String()
}
