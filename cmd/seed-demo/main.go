package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/database"
	"github.com/stemsi/dictant-backend/internal/logger"
	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/service"
)

const demoSession = "Демо-диктант"

func num(raw string) *model.Number { return model.NewNumber(raw) }

func demoKey() model.AnswerKey {
	return model.AnswerKey{
		"d1": {
			DrugID:       "d1",
			MNN:          "atorvastatin",
			MNNRu:        "аторвастатин",
			TradeNames:   []string{"Lipitor"},
			TradeNamesRu: []string{"липримар", "торвакард"},
			Forms:        []string{model.FormTablets},
			FormDosages:  map[string][]string{model.FormTablets: {"10", "20", "40", "80"}},
			Indications:  []string{"гиперхолестеринемия", "профилактика ибс"},
			HalfLife:     model.ParseHalfLife("14"),
			Elimination:  []string{"желчь"},
			Doses:        model.DoseTable{Main: model.DoseRange{Min: num("10"), Avg: num("20"), Max: num("80")}},
		},
		"d2": {
			DrugID:       "d2",
			MNN:          "metoprolol",
			MNNRu:        "метопролол",
			TradeNamesRu: []string{"эгилок", "беталок"},
			Forms:        []string{model.FormTablets, model.FormAmpoules},
			FormDosages: map[string][]string{
				model.FormTablets:  {"25", "50", "100"},
				model.FormAmpoules: {"5"},
			},
			Indications: []string{"артериальная гипертензия", "стенокардия"},
			HalfLife:    model.ParseHalfLife("3-7"),
			Elimination: []string{"почки"},
			Doses:       model.DoseTable{Main: model.DoseRange{Min: num("50"), Avg: num("100"), Max: num("200")}},
		},
		"d3": {
			DrugID:       "d3",
			MNN:          "omeprazole",
			MNNRu:        "омепразол",
			TradeNamesRu: []string{"омез", "лосек"},
			Forms:        []string{model.FormCapsules, model.FormPowder},
			FormDosages:  map[string][]string{model.FormCapsules: {"20", "40"}},
			Indications:  []string{"язвенная болезнь", "гэрб"},
			HalfLife:     model.ParseHalfLife("0,5-1"),
			Elimination:  []string{"почки", "желчь"},
			Doses:        model.DoseTable{Main: model.DoseRange{Min: num("20"), Avg: num("20"), Max: num("40")}},
		},
	}
}

// seed-demo loads a small master table, points the dictation at it and opens
// a demo exam session with a short roster.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage backend")
	}
	defer backend.Close()

	settingService := service.NewSettingService(backend.Store, log)
	sessionService := service.NewExamSessionService(backend.Store, log)

	fmt.Println("=== Seeding Demo Dictation ===")

	result, err := settingService.ReplaceMaster(ctx, demoKey(), 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load master table")
	}
	fmt.Printf("Master table: %d drugs\n", result.Loaded)

	drugs := []string{"аторвастатин", "эгилок", "омепразол"}
	duration := 20
	sessionName := demoSession
	indicationKey := "basic"
	sets := map[string][]string{"basic": {"гиперхолестеринемия", "стенокардия", "гэрб"}}
	if _, _, err := settingService.UpdateSettings(ctx, model.UpdateSettingsRequest{
		Drugs:          &drugs,
		Duration:       &duration,
		SessionName:    &sessionName,
		IndicationKey:  &indicationKey,
		IndicationSets: &sets,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to update settings")
	}
	fmt.Printf("Ticket: %v (%d min)\n", drugs, duration)

	session, err := sessionService.Create(ctx, model.CreateExamSessionRequest{SessionName: demoSession})
	if errors.Is(err, service.ErrSessionNameTaken) {
		fmt.Printf("Session %q already exists, skipping\n", demoSession)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam session")
	}

	roster := []string{"Иванов Иван", "Петрова Анна", "Сидоров Пётр", "Кузнецова Мария"}
	if _, err := sessionService.ReplaceRoster(ctx, session.ID, roster); err != nil {
		log.Fatal().Err(err).Msg("Failed to upload roster")
	}

	fmt.Printf("Session %q created, join code %s, %d students\n", session.SessionName, session.JoinCode, len(roster))
}
