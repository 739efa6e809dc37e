package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"persona-engine/internal/catalog"
	"persona-engine/internal/domain"
	"persona-engine/internal/service"
	"persona-engine/internal/store"
)

// Interactive run-through of the questionnaire against the in-memory store.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	logger := zap.NewExample()
	defer logger.Sync()

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal(err)
	}

	history := store.NewHistoryStore(store.NewMemoryStore(), logger)
	engine := service.NewEngine(cat, logger)

	fmt.Print("Your name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		name = "anonymous"
	}

	answers := make(domain.AnswerSet)
	started := time.Now().UTC()
	questionIndex := 0

	for _, q := range cat.Questions {
		if q.Context == domain.ContextUpgrade {
			continue
		}
		questionIndex++
		fmt.Printf("\n%d. %s\n   1=strongly disagree .. 5=strongly agree (enter to skip): ", questionIndex, q.Text)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil || !domain.ValidAnswer(v) {
			fmt.Println("   skipped (answers are 1-5)")
			continue
		}
		answers[q.ID] = v

		snapshot := domain.SessionSnapshot{
			UserName:             name,
			CurrentQuestionIndex: questionIndex,
			Answers:              answers,
			StartedAt:            started,
			LastUpdated:          time.Now().UTC(),
		}
		if err := history.SaveSession(ctx, snapshot); err != nil {
			logger.Warn("session snapshot not saved", zap.Error(err))
		}
	}

	rec, err := engine.BuildRecord(name, answers)
	if err != nil {
		log.Fatal(err)
	}
	if err := history.Append(ctx, rec); err != nil {
		logger.Warn("record not persisted", zap.Error(err))
	}
	_ = history.ClearSession(ctx)

	profile := engine.ComputeProfile(answers)
	printProfile(name, profile)
}

func printProfile(name string, p *domain.Profile) {
	fmt.Printf("\n--- Profile for %s ---\n", name)
	fmt.Printf("Archetype: %s (confidence %d)\n", p.Archetype.Name, p.Archetype.Confidence)
	fmt.Printf("MBTI overlay: %s (%s)\n", p.MBTI.Type, p.MBTI.Name)
	fmt.Printf("Colors: %s / %s\n", p.BirkmanColor.Primary, p.BirkmanColor.Secondary)

	fmt.Println("\nDimensions (usual):")
	for _, dim := range domain.CoreDimensions() {
		fmt.Printf("  %-24s %3d\n", dim, p.Scores[domain.ScoreKey(dim, domain.ContextUsual)])
	}

	fmt.Println("\nComponents:")
	names := domain.ComponentNames()
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-24s %3d\n", n, p.Components[n])
	}
}
