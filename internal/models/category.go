package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups orderable tests. Tests live only inside their category
// document and are always addressed through it.
type Category struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"` // unique, case-insensitive
	Icon         string              `bson:"icon" json:"icon"`
	Description  string              `bson:"description" json:"description"`
	IsFeatured   bool                `bson:"isFeatured" json:"isFeatured"`
	IsActive     bool                `bson:"isActive" json:"isActive"`
	DisplayOrder int                 `bson:"displayOrder" json:"displayOrder"`
	Tests        []Test              `bson:"tests" json:"tests"`
	CreatedBy    *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy    *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`

	// Score is the search relevance, only set on search results.
	Score int `bson:"score,omitempty" json:"score,omitempty"`
}

type Test struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Description    string              `bson:"description" json:"description"`
	Preparation    string              `bson:"preparation" json:"preparation"`
	TurnaroundTime string              `bson:"turnaroundTime" json:"turnaroundTime"`
	WhyToTake      string              `bson:"whyToTake" json:"whyToTake"`
	TotalCost      Amount              `bson:"totalCost" json:"totalCost"`
	IsActive       bool                `bson:"isActive" json:"isActive"`
	CreatedBy      *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy      *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HasTestNamed reports whether the category already holds a test with the
// given name, ignoring case.
func (c *Category) HasTestNamed(name string) bool {
	name = strings.TrimSpace(name)
	for _, t := range c.Tests {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// TestIndex returns the position of the test with the given id, or -1.
func (c *Category) TestIndex(id primitive.ObjectID) int {
	for i, t := range c.Tests {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// RemoveTestAt deletes the test at i, keeping the order of the others.
func (c *Category) RemoveTestAt(i int) {
	c.Tests = append(c.Tests[:i], c.Tests[i+1:]...)
}

// Normalize replaces a missing test list with an empty one.
func (c *Category) Normalize() {
	if c.Tests == nil {
		c.Tests = []Test{}
	}
}
