package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkwell/common"
	"inkwell/forms"
	"inkwell/models"
)

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/register", a.registerPage)
	router.POST("/register", a.registerPost)
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/logout", a.RequireAuth, a.logout)
}

// RequireAuth redirects anonymous requests to the login page.
func (a *AuthModule) RequireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		common.Flash(c, "Sorry, you need to log in first!")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Next()
}

// RequireAdmin fails closed: anonymous sessions, unknown users and
// non-admin accounts all get a 403 and the handler never runs.
func (a *AuthModule) RequireAdmin(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.HTML(http.StatusForbidden, "error.html", gin.H{
			"status": http.StatusForbidden,
			"error":  "You are not allowed to do that",
		})
		c.Abort()
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil || !user.IsAdmin {
		c.HTML(http.StatusForbidden, "error.html", gin.H{
			"status": http.StatusForbidden,
			"error":  "You are not allowed to do that",
		})
		c.Abort()
		return
	}

	c.Set("user_id", user.ID)
	c.Set("current_user", &user)
	c.Next()
}

// CurrentUser resolves the session's user, if any.
func (a *AuthModule) CurrentUser(c *gin.Context) (*models.User, bool) {
	session := sessions.Default(c)
	userID := session.Get("user_id")
	if userID == nil {
		return nil, false
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func (a *AuthModule) registerPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "register.html", gin.H{
		"flashes": common.Flashes(c),
		"errors":  map[string]string{},
		"email":   "",
		"name":    "",
	})
}

func (a *AuthModule) registerPost(c *gin.Context) {
	var form forms.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"errors":  forms.ErrorMessages(err),
			"email":   c.PostForm("email"),
			"name":    c.PostForm("name"),
			"flashes": common.Flashes(c),
		})
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", form.Email).First(&existing).Error; err == nil {
		common.Flash(c, "This email address is already used")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	passwordHash, err := hashPassword(form.Password)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not create account",
		})
		return
	}

	// The first account ever registered becomes the admin.
	var userCount int64
	a.db.Model(&models.User{}).Count(&userCount)

	user := models.User{
		Email:        form.Email,
		PasswordHash: passwordHash,
		Name:         form.Name,
		IsAdmin:      userCount == 0,
	}

	if err := a.db.Create(&user).Error; err != nil {
		// The unique index on email backstops the lookup above; a lost
		// race still leaves no partial record.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Flash(c, "This email address is already used")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Could not create account",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"flashes": common.Flashes(c),
		"errors":  map[string]string{},
		"email":   "",
	})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"errors":  forms.ErrorMessages(err),
			"email":   c.PostForm("email"),
			"flashes": common.Flashes(c),
		})
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", form.Email).First(&user).Error; err != nil {
		common.Flash(c, "Email address not found.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if !checkPasswordHash(form.Password, user.PasswordHash) {
		common.Flash(c, "Wrong password.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
