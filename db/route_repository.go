package db

import (
	"github.com/pkg/errors"
	"github.com/waylines/waylines/models"
	"gorm.io/gorm"
)

// RouteRepository interface
type RouteRepository interface {
	CreateRouteWithChat(route *models.Route) error
	FindRouteByID(id uint) (*models.Route, error)
	ListRoutesByAuthor(authorID uint) ([]models.Route, error)
	AddToShareList(routeID uint, users []models.User) error
}

// routeRepo struct
type routeRepo struct {
	DB *gorm.DB
}

// NewRouteRepo creates a new instance of RouteRepository
func NewRouteRepo(db *GormDB) RouteRepository {
	return &routeRepo{db.DB}
}

// CreateRouteWithChat persists the route and its chat in one transaction, so
// a route never exists without a chat.
func (r *routeRepo) CreateRouteWithChat(route *models.Route) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(route).Error; err != nil {
			return errors.Wrap(err, "could not create route")
		}
		chat := models.RouteChat{RouteID: route.ID, IsActive: true}
		if err := tx.Create(&chat).Error; err != nil {
			return errors.Wrap(err, "could not create route chat")
		}
		return nil
	})
}

func (r *routeRepo) FindRouteByID(id uint) (*models.Route, error) {
	var route models.Route
	if err := r.DB.Preload("Author").Preload("SharedWith").First(&route, id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *routeRepo) ListRoutesByAuthor(authorID uint) ([]models.Route, error) {
	var routes []models.Route
	if err := r.DB.Where("author_id = ?", authorID).Order("created_at desc").Find(&routes).Error; err != nil {
		return nil, errors.Wrap(err, "could not list routes")
	}
	return routes, nil
}

func (r *routeRepo) AddToShareList(routeID uint, users []models.User) error {
	route := models.Route{Model: models.Model{ID: routeID}}
	if err := r.DB.Model(&route).Association("SharedWith").Append(users); err != nil {
		return errors.Wrap(err, "could not update share list")
	}
	return nil
}
