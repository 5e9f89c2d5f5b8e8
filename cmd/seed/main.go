package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"insightform/internal/cache"
	"insightform/internal/config"
	"insightform/internal/logger"
	"insightform/internal/model"
	"insightform/internal/repository"
	"insightform/internal/service"
)

const (
	demoEmail     = "demo@insightform.dev"
	demoPassword  = "demo-password"
	demoResponses = 40
)

var comments = []string{
	"Battery life is great but the camera struggles at night",
	"Love the display, the battery could be better",
	"Camera is amazing",
	"Too expensive for what it offers",
	"Fast and smooth, great display",
	"",
}

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		zl.Fatal("failed to create indexes", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	responseRepo := repository.NewResponseRepo(db)
	chartCache := cache.NewChartCache(rdb, cfg.ChartCacheTTL)

	authSvc := service.NewAuthService(repository.NewUserRepo(db), cfg.JWTSecret, cfg.TokenTTL)
	formSvc := service.NewFormService(repository.NewFormRepo(db), responseRepo, repository.NewReportRepo(db),
		cache.NewLinkCache(rdb), chartCache, zl)
	responseSvc := service.NewResponseService(formSvc, responseRepo, chartCache, zl)

	owner, err := authSvc.Register(ctx, &model.RegisterRequest{
		Name:     "Demo Owner",
		Email:    demoEmail,
		Password: demoPassword,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		owner, err = authSvc.Login(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		zl.Fatal("failed to create demo user", zap.Error(err))
	}

	form, err := formSvc.Create(ctx, owner.UserID, &model.Form{
		Title:       "Smartphone Launch Feedback",
		Description: "Understand user perception, satisfaction and improvement areas for the new device.",
		Questions: []model.Question{
			{Text: "Which model did you purchase?", Type: model.QuestionTypeMCQ, Options: []string{"Standard", "Pro", "Ultra"}, Required: true},
			{Text: "How satisfied are you overall?", Type: model.QuestionTypeRating, Required: true},
			{Text: "How many hours a day do you use it?", Type: model.QuestionTypeNumber},
			{Text: "What would you improve?", Type: model.QuestionTypeText},
		},
	})
	if err != nil {
		zl.Fatal("failed to create demo form", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(42))
	models := form.Questions[0].Options
	for i := 0; i < demoResponses; i++ {
		rating := float64(rng.Intn(10)+1) / 2
		req := &model.SubmitRequest{Answers: []model.SubmittedAnswer{
			{QuestionID: form.Questions[0].ID, Answer: models[rng.Intn(len(models))]},
			{QuestionID: form.Questions[1].ID, Answer: strconv.FormatFloat(rating, 'f', -1, 64)},
			{QuestionID: form.Questions[2].ID, Answer: strconv.Itoa(rng.Intn(12) + 1)},
			{QuestionID: form.Questions[3].ID, Answer: comments[rng.Intn(len(comments))]},
		}}
		if _, err := responseSvc.Submit(ctx, form.ShareSlug, req, "127.0.0.1", "seed"); err != nil {
			zl.Fatal("failed to submit demo response", zap.Int("n", i), zap.Error(err))
		}
	}

	zl.Info("seeded demo data",
		zap.String("email", demoEmail),
		zap.String("formId", form.ID),
		zap.String("shareSlug", form.ShareSlug),
		zap.Int("responses", demoResponses),
	)
}
