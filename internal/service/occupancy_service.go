package service

import (
	"context"

	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// AmenityOccupancy is one line of the site breakdown
type AmenityOccupancy struct {
	AmenityID string `json:"amenity_id"`
	Name      string `json:"name"`
	Current   int    `json:"current"`
	Capacity  int    `json:"capacity"`
}

// SiteOccupancy is everyone currently on the premises
type SiteOccupancy struct {
	Total     int                `json:"total"`
	Visitors  int                `json:"visitors"`
	Amenities []AmenityOccupancy `json:"amenities"`
}

// OccupancyService sums headcounts for evacuation planning
type OccupancyService interface {
	// TotalOccupancy is the amenity headcounts plus checked-in visitors
	TotalOccupancy(ctx context.Context) (int, error)

	// SiteOccupancy returns the total with its per-amenity breakdown
	SiteOccupancy(ctx context.Context) (*SiteOccupancy, error)
}

type occupancyService struct {
	amenities AmenityService
	visitors  VisitorService
}

// NewOccupancyService creates a new occupancy service
func NewOccupancyService(amenities AmenityService, visitors VisitorService) OccupancyService {
	return &occupancyService{amenities: amenities, visitors: visitors}
}

func (s *occupancyService) TotalOccupancy(ctx context.Context) (int, error) {
	site, err := s.SiteOccupancy(ctx)
	if err != nil {
		return 0, err
	}
	return site.Total, nil
}

func (s *occupancyService) SiteOccupancy(ctx context.Context) (*SiteOccupancy, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.occupancy.site")
	defer span.End()

	amenities, err := s.amenities.List(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	visitors, err := s.visitors.CountOnSite(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	site := &SiteOccupancy{Visitors: visitors, Amenities: make([]AmenityOccupancy, 0, len(amenities))}
	total := visitors
	for _, a := range amenities {
		site.Amenities = append(site.Amenities, AmenityOccupancy{
			AmenityID: a.ID,
			Name:      a.Name,
			Current:   a.CurrentOccupancy,
			Capacity:  a.Capacity,
		})
		total += a.CurrentOccupancy
	}
	site.Total = total
	return site, nil
}
