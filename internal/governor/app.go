package governor

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/agentgov/governor/internal/governor/biz"
	"github.com/agentgov/governor/internal/governor/handler"
	"github.com/agentgov/governor/internal/governor/router"
	"github.com/agentgov/governor/internal/governor/store"
	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/pkg/app"
	"github.com/agentgov/governor/pkg/component/azure"
	"github.com/agentgov/governor/pkg/component/mysql"
)

const (
	appName        = "governor"
	appDescription = `Agent governance service.

Provisions an isolated cloud environment per agent (resource group,
budget, ML workspace, OpenAI deployment), proxies chat completions to
the deployed model and manages knowledge-source file attachments.`
)

// NewApp creates the governor application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Agent governance service"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run starts the governor service with the given options.
func Run(opts *Options) error {
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting governor service...")

	mysqlClient, err := mysql.New(opts.MySQL)
	if err != nil {
		return fmt.Errorf("failed to initialize mysql: %w", err)
	}
	db := mysqlClient.DB()

	if err := db.AutoMigrate(&model.Agent{}, &model.KnowledgeSource{}, &model.AgentKnowledgeSource{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database migration completed")

	factory := store.New(db)
	defer factory.Close()

	gw, err := azure.New(opts.Azure)
	if err != nil {
		return fmt.Errorf("failed to initialize azure gateway: %w", err)
	}
	logger.Info("Azure gateway initialized")

	agentSvc := biz.NewAgentService(factory, gw)
	chatSvc := biz.NewChatService(factory, biz.NewOpenAIChatClient())
	knowledgeSvc := biz.NewKnowledgeService(factory, gw)

	agentHandler := handler.NewAgentHandler(agentSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeSvc)

	if !opts.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(opts.HTTP, agentHandler, chatHandler, knowledgeHandler, mysqlClient.Health())

	logger.Info("Governor service is ready")
	return Serve(opts.HTTP, engine)
}
