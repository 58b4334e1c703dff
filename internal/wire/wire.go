package wire

import (
	"Keystone/internal/api"
	"Keystone/internal/api/config"
	"Keystone/internal/api/handler"
	"Keystone/internal/job"
	"Keystone/internal/pkg/cron"
	"Keystone/internal/pkg/es"
	"Keystone/internal/pkg/kafka"
	"Keystone/internal/pkg/minio"
	"Keystone/internal/pkg/mongo"
	"Keystone/internal/repository"
	"Keystone/internal/service"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	minioSDK "github.com/minio/minio-go/v7"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	PurgeSvc     service.AccountPurgeService
}

// Externals 外部存储客户端，未配置的为 nil
type Externals struct {
	Mongo   *mongoDriver.Database
	MinIO   *minioSDK.Client
	Elastic *elasticsearch.TypedClient
}

func BuildApplication(db *gorm.DB, ext Externals, cfg *config.Config) (*ApplicationContainer, error) {
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	userCounterRepo := repository.NewUserCounterRepo(db)
	postActionRepo := repository.NewPostActionRepo(db)
	purgeRepo := repository.NewPurgeRepo(db, userCounterRepo, cfg.Purge.BatchSize)

	// 未配置的外部依赖保持为 nil 接口
	var (
		inbox      service.NotificationInbox
		search     service.SearchIndexCleaner
		mediaStore service.MediaStore
	)
	if ext.Mongo != nil {
		inbox = mongo.NewSysBoxRepo(ext.Mongo)
	}
	if ext.Elastic != nil {
		search = es.NewSearchCleaner(ext.Elastic, cfg.Elastic.Indices.UserIndex, cfg.Elastic.Indices.PostIndex)
	}
	var store *minio.Store
	if ext.MinIO != nil {
		store = minio.NewStore(ext.MinIO, cfg.MinIO.MainBucket)
		mediaStore = store
	}

	followCache := service.NewFollowListCache(time.Duration(cfg.Follow.ListCacheTTLMin) * time.Minute)
	debounce := time.Duration(cfg.Follow.ToggleDebounceMs) * time.Millisecond

	userFollowService := service.NewUserFollowService(transactor, userRepo, userFollowRepo, userCounterRepo, inbox, followCache, debounce)
	suggestionService := service.NewSuggestionService(userRepo, userFollowRepo, postActionRepo, cfg.Suggestion.DefaultLimit, cfg.Suggestion.MaxLimit)
	purgeService := service.NewAccountPurgeService(transactor, userRepo, purgeRepo, mediaStore, search, inbox, followCache)

	handlers := &api.HandlersGroup{
		UserFollowHandler: handler.NewUserFollowHandler(userFollowService),
		SuggestionHandler: handler.NewSuggestionHandler(suggestionService),
		AccountHandler:    handler.NewAccountHandler(purgeService),
	}
	router := api.SetupRouter(handlers, cfg.Logstash.Index)

	cronMgr := cron.NewCronManager()
	if store != nil {
		cronMgr.Add(cfg.Cron.MediaCleanup, job.NewMediaCleanupJob(store, cfg.Cron.MediaCleanupMaxTry))
	}

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, followCache)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		PurgeSvc:     purgeService,
	}, nil
}
