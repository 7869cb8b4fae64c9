package chatbot

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tandur-id/tandur-backend/pkg/db/models"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/groq"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

const systemPrompt = "Kamu adalah Tani, asisten virtual Tandur — platform yang " +
	"menghubungkan petani Indonesia dengan pembeli. Jawab dalam Bahasa Indonesia " +
	"yang ramah dan singkat. Gunakan hanya data yang diberikan; jika data kosong, " +
	"katakan bahwa belum ada informasi. Jangan mengarang nama, harga, atau lokasi."

// Answer is the bot's reply plus how the question was routed.
type Answer struct {
	Intent Intent `json:"intent"`
	Reply  string `json:"reply"`
}

// Service answers marketplace questions with platform data and a language model.
type Service interface {
	Ask(ctx context.Context, message string) (*Answer, error)
}

type service struct {
	repo      Repository
	completer groq.Completer
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires chatbot dependencies.
func NewService(repo Repository, completer groq.Completer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chatbot repository required")
	}
	if completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat completer required")
	}
	return &service{repo: repo, completer: completer, logg: logg, now: time.Now}, nil
}

func (s *service) Ask(ctx context.Context, message string) (*Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pesan tidak boleh kosong")
	}

	intent := ClassifyIntent(message)
	contextData, err := s.fetchContext(ctx, intent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch chat context")
	}

	contextJSON, err := json.Marshal(contextData)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode chat context")
	}

	reply, err := s.completer.Complete(ctx, []groq.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: message + "\n\nData platform (JSON):\n" + string(contextJSON)},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "chat completion")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "intent", intent.String()), "chatbot answered")
	}
	return &Answer{Intent: intent, Reply: reply}, nil
}

// fetchContext runs the canned query for the intent and reduces the rows to
// the public fields the prompt may see.
func (s *service) fetchContext(ctx context.Context, intent Intent) (map[string]any, error) {
	switch intent {
	case IntentProductsNew:
		products, err := s.repo.NewProducts(ctx, s.now().Add(-30*24*time.Hour))
		if err != nil {
			return nil, err
		}
		return map[string]any{"produkBaru": productViews(products)}, nil

	case IntentProductsAvailable:
		products, err := s.repo.AvailableProducts(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"produkTersedia": productViews(products)}, nil

	case IntentProductsRice:
		products, err := s.repo.ProductsMatching(ctx, []string{"beras", "padi", "gabah"})
		if err != nil {
			return nil, err
		}
		return map[string]any{"produkBeras": productViews(products)}, nil

	case IntentProductsVeggies:
		products, err := s.repo.ProductsMatching(ctx, []string{"sayur", "kangkung", "bayam", "cabai", "tomat"})
		if err != nil {
			return nil, err
		}
		return map[string]any{"produkSayur": productViews(products)}, nil

	case IntentProductsFruits:
		products, err := s.repo.ProductsMatching(ctx, []string{"buah", "mangga", "pisang", "jeruk"})
		if err != nil {
			return nil, err
		}
		return map[string]any{"produkBuah": productViews(products)}, nil

	case IntentProductsCheap:
		products, err := s.repo.CheapestProducts(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"produkTermurah": productViews(products)}, nil

	case IntentFarmersNew:
		farmers, err := s.repo.NewestFarmers(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"petaniBaru": farmerViews(farmers)}, nil

	case IntentFarmersActive:
		farmers, err := s.repo.ActiveFarmers(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"petaniAktif": farmerViews(farmers)}, nil

	case IntentProjects:
		projects, err := s.repo.RecentProjects(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"proyek": projectViews(projects)}, nil

	case IntentStats:
		counts, err := s.repo.Counts(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"statistik": counts}, nil

	case IntentUpdates:
		updates, err := s.repo.RecentUpdates(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"update": updateViews(updates)}, nil

	case IntentLocations:
		locations, err := s.repo.ProjectLocations(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"lokasi": locations}, nil

	default:
		return map[string]any{}, nil
	}
}

func productViews(products []models.Produk) []map[string]any {
	views := make([]map[string]any, 0, len(products))
	for _, p := range products {
		views = append(views, map[string]any{
			"nama":   p.NamaProduk,
			"harga":  p.Harga,
			"unit":   p.Unit,
			"stok":   p.StokTersedia,
			"status": p.Status,
		})
	}
	return views
}

func farmerViews(farmers []models.User) []map[string]any {
	views := make([]map[string]any, 0, len(farmers))
	for _, f := range farmers {
		view := map[string]any{"nama": f.Name}
		if f.Username != nil {
			view["username"] = *f.Username
		}
		if f.Lokasi != nil {
			view["lokasi"] = *f.Lokasi
		}
		views = append(views, view)
	}
	return views
}

func projectViews(projects []models.ProyekTani) []map[string]any {
	views := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		views = append(views, map[string]any{
			"nama":   p.NamaProyek,
			"lokasi": p.LokasiLahan,
			"status": p.Status,
		})
	}
	return views
}

func updateViews(updates []models.FarmingUpdate) []map[string]any {
	views := make([]map[string]any, 0, len(updates))
	for _, u := range updates {
		views = append(views, map[string]any{
			"judul":   u.Judul,
			"isi":     u.Deskripsi,
			"tanggal": u.CreatedAt.Format("2006-01-02"),
		})
	}
	return views
}
