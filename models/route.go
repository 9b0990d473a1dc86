package models

// Route privacy levels. "link" routes are reachable by anyone holding the
// identifier; "personal" routes are visible to the author and the share list.
const (
	PrivacyPublic   = "public"
	PrivacyPrivate  = "private"
	PrivacyLink     = "link"
	PrivacyPersonal = "personal"
)

const (
	RouteTypeDriving = "driving"
	RouteTypeWalking = "walking"
	RouteTypeCycling = "cycling"
	RouteTypeMixed   = "mixed"
)

// Route is a travel route. The chat subsystem reads it for access control
// only; privacy and the share list are owned here.
type Route struct {
	Model
	AuthorID         uint    `json:"author_id" gorm:"not null;index"`
	Author           User    `json:"author" gorm:"foreignKey:AuthorID"`
	Name             string  `json:"name" binding:"required,max=200"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"short_description" binding:"max=300"`
	Privacy          string  `json:"privacy" gorm:"default:public"`
	RouteType        string  `json:"route_type" gorm:"default:walking"`
	DurationMinutes  int     `json:"duration_minutes"`
	Country          string  `json:"country"`
	TotalDistance    float64 `json:"total_distance"`
	IsActive         bool    `json:"is_active" gorm:"default:true"`
	SharedWith       []User  `json:"shared_with,omitempty" gorm:"many2many:route_shared_with;"`
}

// IsSharedWith reports whether the user is on the route's explicit share list.
func (r *Route) IsSharedWith(userID uint) bool {
	for _, u := range r.SharedWith {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func ValidPrivacy(p string) bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyLink, PrivacyPersonal:
		return true
	}
	return false
}
