package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"hunttickets/internal/config"
	"hunttickets/internal/database"
	"hunttickets/internal/logger"
	"hunttickets/internal/models"
	"hunttickets/internal/repository"
	"hunttickets/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	producers = flag.Int("producers", 3, "Number of producers to create")
	events    = flag.Int("events", 10, "Number of events to create")
	tickets   = flag.Int("tickets", 25, "Number of tickets to create")
	dryRun    = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var (
	titles    = []string{"Festival Estéreo Picnic", "Noche de Salsa", "Hamlet", "Clásico Capitalino", "Go Meetup Bogotá", "Jazz al Parque", "Stand-up Comedy"}
	locations = []string{"Bogotá", "Medellín", "Cali", "Barranquilla", "Cartagena"}
	names     = []string{"Ana Gómez", "Carlos Ruiz", "María López", "Juan Pérez", "Laura Torres", "Andrés Díaz"}
	types     = []string{models.TicketTypeRegular, models.TicketTypeRegular, models.TicketTypeVIP, models.TicketTypeBackstage}
)

// Seeder fills an empty database with sample producers, events, tickets and
// policies. Everything except producers goes through the services so the
// stored rows pass the same validation as API writes.
type Seeder struct {
	producers *repository.ProducerRepository
	services  *service.Services
	rnd       *rand.Rand
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting seeder...")

	if *dryRun {
		slog.Info("[DRY RUN] Would generate sample data", "producers", *producers, "events", *events, "tickets", *tickets)
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	repos := repository.NewRepositories(db)
	s := &Seeder{
		producers: repos.Producers,
		services:  service.NewServices(repos, service.Options{}),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.Seed(context.Background()); err != nil {
		logger.Fatal("Failed to seed database", "error", err)
	}

	slog.Info("Seeding completed successfully!")
}

func (s *Seeder) Seed(ctx context.Context) error {
	producerIDs, err := s.seedProducers(ctx)
	if err != nil {
		return err
	}

	eventIDs := make([]int64, 0, *events)
	for i := 0; i < *events; i++ {
		ev, err := s.services.Events.Create(ctx, s.eventRequest(i))
		if err != nil {
			slog.Error("Failed to create event", "index", i, "error", err)
			continue
		}
		eventIDs = append(eventIDs, ev.ID)
	}
	slog.Info("Created events", "count", len(eventIDs))

	created := 0
	for i := 0; i < *tickets; i++ {
		if _, err := s.services.Tickets.Create(ctx, s.ticketRequest(i, eventIDs)); err != nil {
			slog.Error("Failed to create ticket", "index", i, "error", err)
			continue
		}
		created++
	}
	slog.Info("Created tickets", "count", created)

	for _, id := range producerIDs {
		terms := "<h2>Términos y condiciones</h2><p>La boleta es personal e intransferible.</p>"
		refund := "Se reembolsa el 100% hasta 48 horas antes del evento."
		_, err := s.services.Policies.Create(ctx, &models.PoliciesRequest{
			ProducerID:         id,
			TermsAndConditions: &terms,
			RefundPolicy:       &refund,
		})
		if err != nil {
			slog.Error("Failed to create policies", "producer_id", id, "error", err)
		}
	}
	slog.Info("Created policies", "count", len(producerIDs))

	return nil
}

func (s *Seeder) seedProducers(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, *producers)
	for i := 0; i < *producers; i++ {
		desc := "Productora de eventos de ejemplo"
		p := &models.Producer{
			ID:          uuid.NewString(),
			Name:        fmt.Sprintf("Productora %d", i+1),
			Description: &desc,
		}
		if err := s.producers.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to create producer: %w", err)
		}
		ids = append(ids, p.ID)
	}
	slog.Info("Created producers", "count", len(ids))
	return ids, nil
}

func (s *Seeder) eventRequest(i int) *models.CreateEventRequest {
	capacity := (s.rnd.Intn(10) + 1) * 50
	price := decimal.NewFromInt(int64(s.rnd.Intn(20)+1) * 10000)
	date := time.Now().AddDate(0, 0, s.rnd.Intn(180)+1).UTC()

	return &models.CreateEventRequest{
		Title:       fmt.Sprintf("%s %d", titles[i%len(titles)], date.Year()),
		EventDate:   date.Format(time.RFC3339),
		Location:    locations[s.rnd.Intn(len(locations))],
		MaxCapacity: &capacity,
		Price:       &price,
		Category:    models.EventCategories[s.rnd.Intn(len(models.EventCategories))],
	}
}

func (s *Seeder) ticketRequest(i int, eventIDs []int64) *models.CreateTicketRequest {
	name := names[s.rnd.Intn(len(names))]
	req := &models.CreateTicketRequest{
		Name:       name,
		Email:      fmt.Sprintf("asistente%d@example.com", i+1),
		TicketType: types[s.rnd.Intn(len(types))],
	}
	if len(eventIDs) > 0 {
		id := eventIDs[s.rnd.Intn(len(eventIDs))]
		req.EventID = &id
	}
	return req
}
