package data

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"consultantos/internal/conf"
	"consultantos/internal/model"
)

// Data 持有所有数据层句柄
type Data struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Minio  *minio.Client
	Bucket string
}

func NewData(cfg *conf.Config) (*Data, func(), error) {
	// 1. 连接 Postgres
	db, err := gorm.Open(postgres.Open(cfg.Data.DatabaseSource), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("schema migration failed: %v", err)
	}
	log.Println("✅ 数据库表结构迁移完成")

	// 2. 初始化 Redis (摄取任务队列)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Data.RedisAddr,
		Password: cfg.Data.RedisPassword,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, nil, fmt.Errorf("redis 连接失败: %v", err)
	}
	log.Println("✅ Redis 连接成功")

	// 3. 初始化 MinIO (原始文件存储)
	minioClient, err := minio.New(cfg.Data.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Data.MinioAccessKey, cfg.Data.MinioSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("minio 初始化失败: %v", err)
	}

	bucketName := cfg.Data.MinioBucket
	exists, err := minioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, nil, fmt.Errorf("检查 MinIO Bucket 失败: %v", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, nil, fmt.Errorf("创建 MinIO Bucket 失败: %v", err)
		}
		log.Printf("🎉 MinIO Bucket '%s' 创建成功", bucketName)
	} else {
		log.Printf("✅ MinIO 连接成功 (Bucket '%s' 已存在)", bucketName)
	}

	d := &Data{
		DB:     db,
		Redis:  rdb,
		Minio:  minioClient,
		Bucket: bucketName,
	}

	cleanup := func() {
		log.Println("正在关闭数据层资源...")
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
		d.Redis.Close()
	}

	return d, cleanup, nil
}

// AutoMigrate 建表 / 改字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Session{},
		&model.Source{},
		&model.Chunk{},
		&model.ActionItem{},
		&model.TranscriptUpload{},
	)
}

// UploadFile 流式上传到 MinIO，返回 minio://bucket/object 路径
func (d *Data) UploadFile(ctx context.Context, reader io.Reader, size int64, fileName, contentType string) (string, error) {
	// 对象名加 uuid 前缀防重名
	objectName := uuid.New().String() + "_" + fileName
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := d.Minio.PutObject(ctx, d.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	log.Printf("文件已存入 MinIO: %s (Size: %d)", objectName, info.Size)
	return fmt.Sprintf("minio://%s/%s", d.Bucket, objectName), nil
}

// GetFileStream 获取文件流 (预览/下载)
func (d *Data) GetFileStream(ctx context.Context, objectName string) (*minio.Object, int64, error) {
	obj, err := d.Minio.GetObject(ctx, d.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, err
	}
	return obj, stat.Size, nil
}

// ParseHostPort 解析 "host:port" 字符串
func ParseHostPort(addr string, defaultHost string, defaultPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort
	}
	return host, port
}

const ingestQueueKey = "consultantos_ingest_tasks"

// PushTask 任务入队 (生产者)
func (d *Data) PushTask(ctx context.Context, payload []byte) error {
	return d.Redis.LPush(ctx, ingestQueueKey, payload).Err()
}

// PopTask 阻塞取任务 (Worker 消费者)，timeout=0 表示一直等
func (d *Data) PopTask(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := d.Redis.BLPop(ctx, timeout, ingestQueueKey).Result()
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, fmt.Errorf("队列返回格式异常")
	}
	return []byte(result[1]), nil
}
