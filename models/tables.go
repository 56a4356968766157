package models

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Name         string `gorm:"not null" json:"name"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"` // granted to the first registered account

	Posts    []BlogPost `gorm:"foreignKey:AuthorID" json:"-"`
	Comments []Comment  `gorm:"foreignKey:AuthorID" json:"-"`
}

type BlogPost struct {
	ID       int    `gorm:"primary_key;autoIncrement" json:"id"`
	AuthorID int    `gorm:"not null;index" json:"author_id"`
	Title    string `gorm:"unique;not null" json:"title"`
	Subtitle string `gorm:"not null" json:"subtitle"`
	Date     string `gorm:"not null" json:"date"` // display string, stamped server-side on creation
	Body     string `gorm:"type:text;not null" json:"body"`
	ImgURL   string `gorm:"not null" json:"img_url"`

	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"-"`
}

type Comment struct {
	ID       int    `gorm:"primary_key;autoIncrement" json:"id"`
	AuthorID int    `gorm:"not null;index" json:"author_id"`
	PostID   int    `gorm:"not null;index" json:"post_id"`
	Text     string `gorm:"type:text;not null" json:"text"`

	Author User `gorm:"foreignKey:AuthorID" json:"author"`
}
