package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/logger"
)

type amenitySpec struct {
	id, name, code string
	location       domain.AmenityLocation
	kind           domain.AmenityType
	capacity       int
	occupancy      int
	approval       bool
	guardian       bool
	price          int64 // per hour; non-zero means payment is required
	equipment      []string
	rules          []string
}

var catalogue = []amenitySpec{
	{"amen-gf-01", "Music Room", "AMEN-GF-01", domain.LocationGroundFloor, domain.AmenityTypeReservation, 10, 3, false, false, 0,
		[]string{"Piano", "Guitar", "Drums", "Microphones", "Sound System"},
		[]string{"No food or drinks", "Maximum 2 hours per session", "Clean up after use"}},
	{"amen-gf-02", "Cinema Hall", "AMEN-GF-02", domain.LocationGroundFloor, domain.AmenityTypeReservation, 50, 15, false, false, 25,
		[]string{"Projector", "Sound System", "Recliner Seats", "Air Conditioning"},
		[]string{"No outside food", "Advance booking required", "Minimum 10 people for private screening"}},
	{"amen-gf-03", "Fitness Gym", "AMEN-GF-03", domain.LocationGroundFloor, domain.AmenityTypeReservation, 25, 18, false, false, 0,
		[]string{"Treadmills", "Weight Machines", "Free Weights", "Yoga Mats", "Cardio Equipment"},
		[]string{"Towel mandatory", "Proper gym attire required", "90 minutes maximum per session"}},
	{"amen-gf-04", "Social Hall", "AMEN-GF-04", domain.LocationGroundFloor, domain.AmenityTypeReservation, 100, 0, true, false, 100,
		[]string{"Stage", "Sound System", "Tables", "Chairs", "Kitchen Access"},
		[]string{"Admin approval required", "Security deposit needed", "Event insurance mandatory"}},
	{"amen-gf-05", "Children Play Room", "AMEN-GF-05", domain.LocationGroundFloor, domain.AmenityTypeMonitoring, 20, 8, false, true, 0,
		[]string{"Soft Play Equipment", "Toys", "Books", "Art Supplies", "Safety Mats"},
		[]string{"Guardian supervision mandatory", "Age limit: 2-12 years", "Clean hands before entry"}},
	{"amen-gf-06", "Snooker Room", "AMEN-GF-06", domain.LocationGroundFloor, domain.AmenityTypeReservation, 8, 4, false, false, 15,
		[]string{"2 Snooker Tables", "Cues", "Balls", "Scoreboard", "Seating Area"},
		[]string{"Maximum 4 players per table", "Proper cue handling", "No drinks near tables"}},
	{"amen-gf-07", "Library & Reading Room", "AMEN-GF-07", domain.LocationGroundFloor, domain.AmenityTypeOpenAccess, 30, 12, false, false, 0,
		[]string{"Books", "Study Tables", "Computers", "Printers", "WiFi"},
		[]string{"Silence mandatory", "No food allowed", "Return books within 14 days"}},
	{"amen-gf-08", "Swimming Pool", "AMEN-GF-08", domain.LocationGroundFloor, domain.AmenityTypeReservation, 40, 22, false, false, 20,
		[]string{"Pool", "Lifeguard Chair", "Pool Equipment", "Changing Rooms", "Showers"},
		[]string{"Swimming attire mandatory", "Children under 12 need supervision", "No diving in shallow end"}},
	{"amen-rt-c-01", "Rooftop Children Area", "AMEN-RT-C-01", domain.LocationRooftopClosed, domain.AmenityTypeMonitoring, 15, 7, false, true, 0,
		[]string{"Playground Equipment", "Safety Barriers", "Shade Structures", "Seating"},
		[]string{"Guardian supervision required", "Age appropriate equipment use", "Weather dependent access"}},
	{"amen-rt-c-02", "Table Tennis Arena", "AMEN-RT-C-02", domain.LocationRooftopClosed, domain.AmenityTypeReservation, 8, 4, false, false, 10,
		[]string{"4 Table Tennis Tables", "Paddles", "Balls", "Net", "Scoreboard"},
		[]string{"Maximum 1 hour per booking", "Proper sports attire", "Equipment care required"}},
	{"amen-rt-c-03", "Badminton Court", "AMEN-RT-C-03", domain.LocationRooftopClosed, domain.AmenityTypeReservation, 12, 6, false, false, 30,
		[]string{"2 Badminton Courts", "Nets", "Rackets", "Shuttlecocks", "Seating"},
		[]string{"Court shoes mandatory", "Maximum 4 players per court", "Advance booking required"}},
	{"amen-rt-c-04", "Open Air Cinema", "AMEN-RT-C-04", domain.LocationRooftopClosed, domain.AmenityTypeReservation, 60, 25, false, false, 50,
		[]string{"Large Screen", "Projector", "Sound System", "Seating", "Weather Protection"},
		[]string{"Weather dependent", "Community events priority", "No outside food during paid events"}},
	{"amen-rt-o-01", "Jogging Track", "AMEN-RT-O-01", domain.LocationRooftopOpen, domain.AmenityTypeOpenAccess, 20, 8, false, false, 0,
		[]string{"Marked Track", "Distance Markers", "Water Stations", "Rest Benches"},
		[]string{"Jogging direction clockwise", "No cycling allowed", "Maintain social distance"}},
	{"amen-rt-o-03", "Garden Seating Area", "AMEN-RT-O-03", domain.LocationRooftopOpen, domain.AmenityTypeOpenAccess, 12, 3, false, false, 0,
		[]string{"Garden Furniture", "Umbrellas", "Plants", "Lighting"},
		[]string{"Quiet zone", "No loud music", "Respect plant life"}},
	{"amen-rt-o-04", "BBQ & Grilling Area", "AMEN-RT-O-04", domain.LocationRooftopOpen, domain.AmenityTypeReservation, 16, 0, false, false, 40,
		[]string{"BBQ Grills", "Tables", "Chairs", "Utensils", "Fire Safety Equipment"},
		[]string{"Fire safety training required", "Clean grills after use", "No unattended cooking"}},
	{"amen-rt-o-05", "Meditation Garden", "AMEN-RT-O-05", domain.LocationRooftopOpen, domain.AmenityTypeReservation, 12, 3, false, false, 0,
		[]string{"Meditation Mats", "Sound System", "Plants", "Water Feature"},
		[]string{"Silence mandatory", "Remove shoes", "Peaceful environment only"}},
	{"amen-gf-09", "Men's Washroom", "WASH-M-01", domain.LocationGroundFloor, domain.AmenityTypeOpenAccess, 5, 1, false, false, 0,
		[]string{"Hand Dryers", "Soap Dispensers", "Mirror", "Tissue Holders"},
		[]string{"Keep clean", "Report maintenance issues", "No smoking"}},
	{"amen-gf-10", "Women's Washroom", "WASH-W-01", domain.LocationGroundFloor, domain.AmenityTypeOpenAccess, 5, 2, false, false, 0,
		[]string{"Hand Dryers", "Soap Dispensers", "Mirror", "Tissue Holders", "Sanitary Disposal"},
		[]string{"Keep clean", "Report maintenance issues", "No smoking"}},
	{"amen-rt-o-06", "Sitting Area-2", "SEAT-02", domain.LocationRooftopOpen, domain.AmenityTypeOpenAccess, 20, 5, false, false, 0,
		[]string{"Benches", "Tables", "Umbrellas", "Planters"},
		[]string{"No loud music", "Keep area clean", "Respect other residents"}},
	{"amen-rt-o-07", "Round Sitting Area", "SEAT-ROUND-01", domain.LocationRooftopOpen, domain.AmenityTypeOpenAccess, 15, 3, false, false, 0,
		[]string{"Circular Seating", "Center Table", "Lighting", "Planters"},
		[]string{"No loud conversations", "Keep area tidy", "Evening hours: 6 PM - 10 PM"}},
	{"amen-rt-o-08", "Basketball Hoop", "BASKET-01", domain.LocationRooftopOpen, domain.AmenityTypeOpenAccess, 10, 4, false, false, 0,
		[]string{"Basketball Hoop", "Court Markings", "Lighting", "Seating Area"},
		[]string{"Proper sports shoes required", "Maximum 30 minutes if others waiting", "No dunking", "Report damaged equipment"}},
	{"amen-rt-o-09", "Service Room", "SERVICE-01", domain.LocationRooftopOpen, domain.AmenityTypeOpenAccess, 3, 0, false, false, 0,
		[]string{"Storage Shelves", "Cleaning Supplies", "Tools", "Utility Sink"},
		[]string{"Staff access priority", "Return tools after use", "Report missing items", "Keep organized"}},
}

// Amenities returns the community amenity catalogue stamped with now
func Amenities(now time.Time) []*domain.Amenity {
	out := make([]*domain.Amenity, 0, len(catalogue))
	for _, s := range catalogue {
		out = append(out, &domain.Amenity{
			ID:                s.id,
			Name:              s.name,
			Code:              s.code,
			Location:          s.location,
			Type:              s.kind,
			Capacity:          s.capacity,
			CurrentOccupancy:  s.occupancy,
			IsAvailable:       true,
			RequiresApproval:  s.approval,
			RequiresGuardian:  s.guardian,
			RequiresPayment:   s.price > 0,
			PricePerHour:      decimal.NewFromInt(s.price),
			MaintenanceStatus: domain.MaintenanceOperational,
			Equipment:         append([]string(nil), s.equipment...),
			Rules:             append([]string(nil), s.rules...),
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return out
}

// Up loads the catalogue, skipping amenities that already exist. It returns
// the number created.
func Up(ctx context.Context, amenities repository.AmenityRepository, counter repository.OccupancyCounter, now time.Time) (int, error) {
	log := logger.Get().Named("seed")
	created := 0
	for _, a := range Amenities(now) {
		if err := a.Validate(); err != nil {
			return created, fmt.Errorf("seed amenity %s: %w", a.ID, err)
		}
		_, err := amenities.GetByID(ctx, a.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAmenityNotFound) {
			return created, fmt.Errorf("seed amenity %s: %w", a.ID, err)
		}
		if err := amenities.Create(ctx, a); err != nil {
			return created, fmt.Errorf("seed amenity %s: %w", a.ID, err)
		}
		// a count already held by the shared counter is live and wins over the catalogue
		if counter != nil {
			if _, err := counter.SetIfAbsent(ctx, a.ID, a.CurrentOccupancy); err != nil {
				return created, fmt.Errorf("seed occupancy %s: %w", a.ID, err)
			}
		}
		created++
	}
	log.Info("Amenity catalogue loaded", zap.Int("created", created), zap.Int("catalogue", len(catalogue)))
	return created, nil
}
