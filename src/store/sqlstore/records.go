package sqlstore

import (
	"time"

	"github.com/theleywin/devconnector/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rows keep object ids as hex strings and embedded sequences as JSON columns

type userRecord struct {
	ID       string `gorm:"primaryKey;size:24"`
	Name     string
	Email    string `gorm:"uniqueIndex"`
	Password string
	Avatar   string
	Date     time.Time
}

func (userRecord) TableName() string { return "users" }

type postRecord struct {
	ID       string           `gorm:"primaryKey;size:24"`
	UserID   string           `gorm:"index;size:24"`
	Text     string           `gorm:"type:text"`
	Name     string
	Avatar   string
	Likes    []models.Like    `gorm:"serializer:json"`
	Comments []models.Comment `gorm:"serializer:json"`
	Date     time.Time        `gorm:"index"`
	Version  int
}

func (postRecord) TableName() string { return "posts" }

type profileRecord struct {
	ID             string `gorm:"primaryKey;size:24"`
	UserID         string `gorm:"uniqueIndex;size:24"`
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string            `gorm:"serializer:json"`
	Bio            string              `gorm:"type:text"`
	GithubUsername string
	Experience     []models.Experience `gorm:"serializer:json"`
	Education      []models.Education  `gorm:"serializer:json"`
	Social         models.Social       `gorm:"serializer:json"`
	Date           time.Time
	Version        int
}

func (profileRecord) TableName() string { return "profiles" }

// hexID parses ids written by this package; a corrupt value decodes as the nil id
func hexID(s string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(s)
	return id
}

func fromUser(u *models.User) userRecord {
	return userRecord{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Avatar:   u.Avatar,
		Date:     u.Date,
	}
}

func (r userRecord) toModel() models.User {
	return models.User{
		ID:       hexID(r.ID),
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Avatar:   r.Avatar,
		Date:     r.Date.UTC(),
	}
}

func fromPost(p *models.Post) postRecord {
	return postRecord{
		ID:       p.ID.Hex(),
		UserID:   p.User.Hex(),
		Text:     p.Text,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Likes:    p.Likes,
		Comments: p.Comments,
		Date:     p.Date,
		Version:  p.Version,
	}
}

func (r postRecord) toModel() models.Post {
	post := models.Post{
		ID:       hexID(r.ID),
		User:     hexID(r.UserID),
		Text:     r.Text,
		Name:     r.Name,
		Avatar:   r.Avatar,
		Likes:    r.Likes,
		Comments: r.Comments,
		Date:     r.Date.UTC(),
		Version:  r.Version,
	}
	post.Normalize()
	return post
}

func fromProfile(p *models.Profile) profileRecord {
	return profileRecord{
		ID:             p.ID.Hex(),
		UserID:         p.User.Hex(),
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Experience:     p.Experience,
		Education:      p.Education,
		Social:         p.Social,
		Date:           p.Date,
		Version:        p.Version,
	}
}

func (r profileRecord) toModel() models.Profile {
	profile := models.Profile{
		ID:             hexID(r.ID),
		User:           hexID(r.UserID),
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Status:         r.Status,
		Skills:         r.Skills,
		Bio:            r.Bio,
		GithubUsername: r.GithubUsername,
		Experience:     r.Experience,
		Education:      r.Education,
		Social:         r.Social,
		Date:           r.Date.UTC(),
		Version:        r.Version,
	}
	profile.Normalize()
	return profile
}
