package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pdfchat/internal/model"
)

var errMissingDocID = errors.New("document message has no doc_id")

// DocumentSink stores registry records; the MySQL repository satisfies it.
type DocumentSink interface {
	Create(ctx context.Context, doc *model.RAGDocument) error
}

// DocumentPersistWorker drains the document queue into the registry database.
// Messages that cannot be decoded or stored are dropped (nack without requeue).
type DocumentPersistWorker struct {
	conn      *amqp.Connection
	sink      DocumentSink
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDocumentPersistWorker(conn *amqp.Connection, sink DocumentSink, queueName string, logger *zap.Logger) *DocumentPersistWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentPersistWorker{
		conn:      conn,
		sink:      sink,
		queueName: queueName,
		logger:    logger.Named("document_worker"),
	}
}

func (w *DocumentPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("delivery channel closed")
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Error("persist document failed",
						zap.String("message_id", d.MessageId),
						zap.Error(err),
					)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("document worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *DocumentPersistWorker) handle(ctx context.Context, body []byte) error {
	var doc model.RAGDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode document message failed: %w", err)
	}
	if doc.DocID == "" {
		return errMissingDocID
	}
	doc.ID = 0
	if err := w.sink.Create(ctx, &doc); err != nil {
		return err
	}
	w.logger.Debug("document persisted", zap.String("doc_id", doc.DocID))
	return nil
}

func (w *DocumentPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
