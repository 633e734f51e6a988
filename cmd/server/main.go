package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"consultantos/internal/conf"
	"consultantos/internal/data"
	"consultantos/internal/handler"
	"consultantos/internal/llm"
	"consultantos/internal/middleware"
	"consultantos/internal/rag"
	"consultantos/internal/repository"
	"consultantos/internal/service"
	"consultantos/internal/vectorstore/qdrantstore"
	"consultantos/internal/worker"
)

// ingestQueue 把 Redis 队列适配成 service.Queue
type ingestQueue struct {
	d *data.Data
}

func (q ingestQueue) Push(ctx context.Context, payload []byte) error {
	return q.d.PushTask(ctx, payload)
}

func main() {
	// 1. 加载配置
	cfg := conf.LoadConfig()

	// 2. 初始化数据层 (Postgres, Redis, MinIO)
	d, cleanup, err := data.NewData(cfg)
	if err != nil {
		log.Fatalf("❌ 数据层初始化失败: %v", err)
	}
	defer cleanup()

	// 3. 初始化向量库 (Qdrant)
	qdrantHost, qdrantPort := data.ParseHostPort(cfg.Data.QdrantAddr, "localhost", 6334)
	store, err := qdrantstore.New(qdrantHost, qdrantPort, cfg.Data.QdrantCollection, cfg.AI.EmbedDim)
	if err != nil {
		log.Fatalf("❌ Qdrant 初始化失败: %v", err)
	}

	// 4. 初始化 AI 客户端 (OpenAI 兼容 API)
	// 向量化是流水线的硬依赖，缺了直接退出
	embedder, err := llm.NewOpenAIEmbedder(llm.EmbedderConfig{
		BaseURL:    cfg.AI.BaseURL,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.EmbedModel,
		Dimensions: cfg.AI.EmbedDim,
	})
	if err != nil {
		log.Fatalf("❌ Embedding 客户端初始化失败: %v", err)
	}

	// 总结和洞察抽取是 best-effort，初始化失败只降级不退出
	var summarizer *rag.Summarizer
	var extractor *rag.Extractor
	generator, err := llm.NewOpenAIGenerator(llm.GeneratorConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.ChatModel,
	})
	if err != nil {
		log.Printf("⚠️ Chat 客户端初始化失败，摘要/洞察功能关闭: %v", err)
	} else {
		summarizer = rag.NewSummarizer(generator)
		extractor = rag.NewExtractor(generator)
	}

	chunker := rag.NewChunker(cfg.AI.ChunkSize, cfg.AI.ChunkOverlap)

	// 5. 初始化服务层与 Worker
	userRepo := repository.NewUserRepository(d.DB)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret)
	clientService := service.NewClientService(d)
	sourceService := service.NewSourceService(d, store, embedder, summarizer, chunker, ingestQueue{d: d})
	searchService := service.NewSearchService(store, embedder)
	transcriptService := service.NewTranscriptService(d, sourceService, extractor)
	taskService := service.NewTaskService(d)
	sessionService := service.NewSessionService(d)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.NewIngestWorker(d, sourceService).Start(ctx, cfg.Worker.Num)

	// 6. 初始化 Handler (控制器)
	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	sourceHandler := handler.NewSourceHandler(sourceService)
	searchHandler := handler.NewSearchHandler(searchService)
	transcriptHandler := handler.NewTranscriptHandler(transcriptService)
	taskHandler := handler.NewTaskHandler(taskService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	fileHandler := handler.NewFileHandler(d)

	// 7. 初始化 Gin Web Server
	r := gin.Default()
	r.Use(middleware.TraceMiddleware())

	// 🔥 关键：配置 CORS 跨域
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // 开发环境允许所有，生产环境建议指定前端域名
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 8. 注册路由
	api := r.Group("/api/v1")
	{
		// 用户认证模块
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// 受保护的路由 (Protected Routes)
		protected := api.Group("/")
		protected.Use(middleware.JWTAuth(cfg.Auth.JWTSecret))
		{
			// 客户
			protected.POST("/clients", clientHandler.Create)
			protected.GET("/clients", clientHandler.List)
			protected.GET("/clients/:id", clientHandler.Get)

			// 来源 (摄取流水线入口)
			protected.POST("/sources", sourceHandler.Create)
			protected.POST("/sources/upload", sourceHandler.Upload)
			protected.GET("/sources", sourceHandler.List)
			protected.GET("/sources/:id", sourceHandler.Get)
			protected.PATCH("/sources/:id", sourceHandler.Patch)
			protected.POST("/sources/:id/reprocess", sourceHandler.Reprocess)
			protected.DELETE("/sources/:id", sourceHandler.Delete)

			// 会话记录收件箱
			protected.POST("/transcripts", transcriptHandler.Create)
			protected.GET("/transcripts", transcriptHandler.List)
			protected.POST("/transcripts/:id/assign", transcriptHandler.Assign)
			protected.PATCH("/transcripts/:id", transcriptHandler.Patch)
			protected.DELETE("/transcripts/:id", transcriptHandler.Delete)

			// 任务
			protected.POST("/tasks", taskHandler.Create)
			protected.GET("/tasks", taskHandler.List)
			protected.PATCH("/tasks/:id", taskHandler.Patch)
			protected.DELETE("/tasks/:id", taskHandler.Delete)

			// 会话
			protected.GET("/sessions", sessionHandler.List)
			protected.GET("/sessions/:id", sessionHandler.Get)

			// 原始文件下载
			protected.GET("/files/:object", fileHandler.Get)

			// 相似检索调试接口
			protected.GET("/debug/rag-search", searchHandler.RagSearch)
		}
	}

	log.Printf("🚀 ConsultantOS 后端已启动，监听端口 :%s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("❌ Server 启动失败: %v", err)
	}
}
