package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/registery/auth-api/config"
	"github.com/registery/auth-api/pkg/googleauth"
	"github.com/registery/auth-api/pkg/helpers"
	"github.com/registery/auth-api/pkg/notifier"
)

// app-level container to share constructed components across packages.
// Router modules are auto-wired from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	tokenManager   *helpers.TokenManager
	googleVerifier *googleauth.Verifier
	welcomeClient  *notifier.Client
	rabbitPub      *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetPGPool(p *pgxpool.Pool)            { pgPool = p }
func GetPGPool() *pgxpool.Pool             { return pgPool }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetGCS(s *storage.Client)             { gcsClient = s }
func GetGCS() *storage.Client              { return gcsClient }
func SetES(c *elasticsearch.Client)        { esClient = c }
func GetES() *elasticsearch.Client         { return esClient }
func SetTokens(m *helpers.TokenManager)    { tokenManager = m }
func GetTokens() *helpers.TokenManager     { return tokenManager }
func SetGoogle(v *googleauth.Verifier)     { googleVerifier = v }
func GetGoogle() *googleauth.Verifier      { return googleVerifier }
func SetNotifier(n *notifier.Client)       { welcomeClient = n }
func GetNotifier() *notifier.Client        { return welcomeClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
