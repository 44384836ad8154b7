package catalog

import "time"

// Pool is a swimming pool in the catalog
type Pool struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Description  *string   `json:"description"`
	EntryFee     *int      `json:"entry_fee"`
	OpeningHours *string   `json:"opening_hours"`
	Website      *string   `json:"website"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Facility *Facility `json:"facility"`
	Reviews  []Review  `json:"reviews,omitempty"`
}

// Facility lists the amenities of a pool. Each pool has at most one.
type Facility struct {
	ID             int64     `json:"id"`
	PoolID         int64     `json:"pool_id"`
	HotTub         bool      `json:"hot_tub"`
	Sauna          bool      `json:"sauna"`
	WaterSlide     bool      `json:"water_slide"`
	ChildFriendly  bool      `json:"child_friendly"`
	DisabledAccess bool      `json:"disabled_access"`
	Gym            bool      `json:"gym"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Review is a user's rating of a pool
type Review struct {
	ID        int64     `json:"id"`
	PoolID    int64     `json:"pool_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	VisitDate *string   `json:"visit_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *ReviewAuthor `json:"user,omitempty"`
}

// ReviewAuthor is the only part of a user exposed alongside a review
type ReviewAuthor struct {
	Username string `json:"username"`
}

// FacilityInput is the optional amenity block of a pool request
type FacilityInput struct {
	HotTub         bool `json:"hot_tub" yaml:"hot_tub"`
	Sauna          bool `json:"sauna" yaml:"sauna"`
	WaterSlide     bool `json:"water_slide" yaml:"water_slide"`
	ChildFriendly  bool `json:"child_friendly" yaml:"child_friendly"`
	DisabledAccess bool `json:"disabled_access" yaml:"disabled_access"`
	Gym            bool `json:"gym" yaml:"gym"`
}

// CreatePoolRequest is the body of POST /api/pools
type CreatePoolRequest struct {
	Name         string         `json:"name" validate:"required,min=2,max=100"`
	Latitude     *float64       `json:"latitude" validate:"omitempty,gte=63,lte=67"`
	Longitude    *float64       `json:"longitude" validate:"omitempty,gte=-24,lte=-13"`
	Description  *string        `json:"description"`
	EntryFee     *int           `json:"entry_fee" validate:"omitempty,gte=0"`
	OpeningHours *string        `json:"opening_hours" validate:"omitempty,max=255"`
	Website      *string        `json:"website" validate:"omitempty,url,max=255"`
	Facilities   *FacilityInput `json:"facilities"`
}

// UpdatePoolRequest is the body of PUT /api/pools/{id}.
// Absent fields are left unchanged.
type UpdatePoolRequest struct {
	Name         *string        `json:"name" validate:"omitempty,min=2,max=100"`
	Latitude     *float64       `json:"latitude" validate:"omitempty,gte=63,lte=67"`
	Longitude    *float64       `json:"longitude" validate:"omitempty,gte=-24,lte=-13"`
	Description  *string        `json:"description"`
	EntryFee     *int           `json:"entry_fee" validate:"omitempty,gte=0"`
	OpeningHours *string        `json:"opening_hours" validate:"omitempty,max=255"`
	Website      *string        `json:"website" validate:"omitempty,url,max=255"`
	Facilities   *FacilityInput `json:"facilities"`
}

// Apply copies the present fields of the request onto p
func (req *UpdatePoolRequest) Apply(p *Pool) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.EntryFee != nil {
		p.EntryFee = req.EntryFee
	}
	if req.OpeningHours != nil {
		p.OpeningHours = req.OpeningHours
	}
	if req.Website != nil {
		p.Website = req.Website
	}
}

// Pool builds the pool described by the request
func (req *CreatePoolRequest) Pool() *Pool {
	return &Pool{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Description:  req.Description,
		EntryFee:     req.EntryFee,
		OpeningHours: req.OpeningHours,
		Website:      req.Website,
	}
}

// Facility builds the facility row for the input
func (in *FacilityInput) Facility() *Facility {
	if in == nil {
		return nil
	}
	return &Facility{
		HotTub:         in.HotTub,
		Sauna:          in.Sauna,
		WaterSlide:     in.WaterSlide,
		ChildFriendly:  in.ChildFriendly,
		DisabledAccess: in.DisabledAccess,
		Gym:            in.Gym,
	}
}

// CreateReviewRequest is the body of POST /api/reviews
type CreateReviewRequest struct {
	PoolID    *int64  `json:"pool_id" validate:"required"`
	Rating    *int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=500"`
	VisitDate *string `json:"visit_date" validate:"omitempty,datetime=2006-01-02"`
}

// Review builds the review authored by userID
func (req *CreateReviewRequest) Review(userID int64) *Review {
	return &Review{
		PoolID:    *req.PoolID,
		UserID:    userID,
		Rating:    *req.Rating,
		Comment:   req.Comment,
		VisitDate: req.VisitDate,
	}
}
