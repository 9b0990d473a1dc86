package services

import (
	stderrors "errors"
	"net/http"

	"github.com/waylines/waylines/config"
	"github.com/waylines/waylines/db"
	apiError "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/models"
	"gorm.io/gorm"
)

// CanViewRoute is the route visibility predicate. A nil user is an
// anonymous requester.
func CanViewRoute(user *models.User, route *models.Route) bool {
	if route == nil {
		return false
	}
	if route.Privacy == models.PrivacyPublic {
		return true
	}
	if user == nil {
		return false
	}
	switch route.Privacy {
	case models.PrivacyPrivate:
		return route.AuthorID == user.ID
	case models.PrivacyPersonal:
		return route.AuthorID == user.ID || route.IsSharedWith(user.ID)
	case models.PrivacyLink:
		// knowledge of the identifier is the access control
		return true
	}
	return false
}

// RouteService interface
type RouteService interface {
	CreateRoute(authorID uint, route *models.Route) (*models.Route, error)
	GetRoute(user *models.User, routeID uint) (*models.Route, error)
	ListMyRoutes(userID uint) ([]models.Route, error)
	ShareRoute(actorID, routeID uint, usernames []string) (*models.Route, error)
}

// routeService struct
type routeService struct {
	Config    *config.Config
	routeRepo db.RouteRepository
	authRepo  db.AuthRepository
}

// NewRouteService creates a new instance of RouteService
func NewRouteService(routeRepo db.RouteRepository, authRepo db.AuthRepository, conf *config.Config) RouteService {
	return &routeService{
		Config:    conf,
		routeRepo: routeRepo,
		authRepo:  authRepo,
	}
}

func (s *routeService) CreateRoute(authorID uint, route *models.Route) (*models.Route, error) {
	if route.Privacy == "" {
		route.Privacy = models.PrivacyPublic
	}
	if !models.ValidPrivacy(route.Privacy) {
		return nil, apiError.New("invalid privacy value", http.StatusBadRequest)
	}
	if route.RouteType == "" {
		route.RouteType = models.RouteTypeWalking
	}
	route.AuthorID = authorID
	route.IsActive = true
	if err := s.routeRepo.CreateRouteWithChat(route); err != nil {
		return nil, apiError.ErrInternalServerError
	}
	return route, nil
}

func (s *routeService) GetRoute(user *models.User, routeID uint) (*models.Route, error) {
	route, err := s.routeRepo.FindRouteByID(routeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		return nil, apiError.ErrInternalServerError
	}
	if !CanViewRoute(user, route) {
		return nil, apiError.ErrForbidden
	}
	return route, nil
}

func (s *routeService) ListMyRoutes(userID uint) ([]models.Route, error) {
	return s.routeRepo.ListRoutesByAuthor(userID)
}

func (s *routeService) ShareRoute(actorID, routeID uint, usernames []string) (*models.Route, error) {
	route, err := s.routeRepo.FindRouteByID(routeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		return nil, apiError.ErrInternalServerError
	}
	if route.AuthorID != actorID {
		return nil, apiError.New("only the author can share a route", http.StatusForbidden)
	}

	var users []models.User
	for _, username := range usernames {
		user, err := s.authRepo.FindUserByUsername(username)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apiError.New("user "+username+" not found", http.StatusNotFound)
			}
			return nil, apiError.ErrInternalServerError
		}
		if user.ID == actorID || route.IsSharedWith(user.ID) {
			continue
		}
		users = append(users, *user)
	}
	if len(users) > 0 {
		if err := s.routeRepo.AddToShareList(routeID, users); err != nil {
			return nil, apiError.ErrInternalServerError
		}
	}
	return s.routeRepo.FindRouteByID(routeID)
}
