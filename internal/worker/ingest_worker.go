package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"consultantos/internal/data"
	"consultantos/internal/service"
)

// IngestWorker 消费 Redis 摄取队列，执行来源处理流水线
type IngestWorker struct {
	data    *data.Data
	sources *service.SourceService
}

func NewIngestWorker(d *data.Data, sources *service.SourceService) *IngestWorker {
	return &IngestWorker{data: d, sources: sources}
}

// Start 启动 Worker 池 (非阻塞)
func (w *IngestWorker) Start(ctx context.Context, numWorkers int) {
	log.Printf("🚀 启动 %d 个 Ingest Worker，开始监听摄取队列...", numWorkers)
	for i := 0; i < numWorkers; i++ {
		go w.processLoop(ctx, i)
	}
}

func (w *IngestWorker) processLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			// 阻塞式取任务 (BLPOP)
			payload, err := w.data.PopTask(ctx, 0)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// Redis 偶尔连接超时是正常的，不要 panic
				log.Printf("[Worker-%d] 等待任务中... (%v)", workerID, err)
				time.Sleep(3 * time.Second)
				continue
			}

			var task service.IngestTask
			if err := json.Unmarshal(payload, &task); err != nil {
				log.Printf("[Worker-%d] ❌ 任务解码失败，丢弃: %v", workerID, err)
				continue
			}

			log.Printf("[Worker-%d] 收到任务 %s (source=%d force=%v)",
				workerID, task.TaskID, task.SourceID, task.Force)

			if err := w.sources.ProcessSource(ctx, task); err != nil {
				log.Printf("[Worker-%d] ❌ 任务 %s 执行出错: %v", workerID, task.TaskID, err)
			}
		}
	}
}
