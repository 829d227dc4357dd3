// Package receipts arquiva o comprovante de cada atendimento finalizado no S3.
package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// S3API é o subconjunto do cliente S3 usado aqui.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client aceita endpoint customizado (MinIO/LocalStack) com path-style.
func NewS3Client(region, accessKeyID, secretAccessKey, endpoint string) *s3.Client {
	cfg := aws.Config{Region: region}
	if accessKeyID != "" && secretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

type Line struct {
	Service       string          `json:"service"`
	PetID         *uuid.UUID      `json:"pet_id,omitempty"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Notes         string          `json:"notes,omitempty"`
	Cancelled     bool            `json:"cancelled"`
}

type Receipt struct {
	AppointmentID    uuid.UUID       `json:"appointment_id"`
	TutorID          uuid.UUID       `json:"tutor_id"`
	Status           string          `json:"status"`
	StartTime        time.Time       `json:"start_time"`
	Lines            []Line          `json:"lines"`
	Total            decimal.Decimal `json:"total"`
	Paid             decimal.Decimal `json:"paid"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	IssuedAt         time.Time       `json:"issued_at"`
}

func Build(ap *models.Appointment, issuedAt time.Time) Receipt {
	r := Receipt{
		AppointmentID: ap.ID,
		TutorID:       ap.TutorID,
		Status:        ap.Status,
		StartTime:     ap.StartTime,
		Total:         ap.FinalPrice,
		Paid:          ap.PaidAmount,
		IssuedAt:      issuedAt,
		Lines:         make([]Line, 0, len(ap.Items)),
	}
	if ap.PaymentReference != nil {
		r.PaymentReference = *ap.PaymentReference
	}
	for _, it := range ap.Items {
		r.Lines = append(r.Lines, Line{
			Service:       it.ServiceName,
			PetID:         it.PetID,
			OriginalPrice: it.OriginalPrice,
			UnitPrice:     it.UnitPrice,
			Notes:         it.PriceNotes,
			Cancelled:     it.Status == models.LineItemCancelledClinical,
		})
	}
	return r
}

// Key é o caminho do comprovante no bucket.
func Key(r Receipt) string {
	return fmt.Sprintf("receipts/%d/%02d/%s.json", r.IssuedAt.Year(), r.IssuedAt.Month(), r.AppointmentID)
}

type Archiver struct {
	client S3API
	bucket string
	log    zerolog.Logger

	queue     chan Receipt
	closeOnce sync.Once
	done      chan struct{}
}

// NewArchiver devolve nil quando não há bucket configurado.
func NewArchiver(client S3API, bucket string, log zerolog.Logger) *Archiver {
	if client == nil || bucket == "" {
		return nil
	}
	a := &Archiver{
		client: client,
		bucket: bucket,
		log:    log.With().Str("component", "receipts").Logger(),
		queue:  make(chan Receipt, 50),
		done:   make(chan struct{}),
	}
	go a.worker()
	return a
}

func (a *Archiver) Put(ctx context.Context, r Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("receipts: marshal: %w", err)
	}
	key := Key(r)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("receipts: s3 put %s: %w", key, err)
	}
	return nil
}

func (a *Archiver) worker() {
	defer close(a.done)
	for r := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.Put(ctx, r); err != nil {
			a.log.Error().Err(err).Str("appointment_id", r.AppointmentID.String()).Msg("receipt archive failed")
		}
		cancel()
	}
}

// Archive enfileira o comprovante sem bloquear.
func (a *Archiver) Archive(ap *models.Appointment) {
	if a == nil {
		return
	}
	select {
	case a.queue <- Build(ap, time.Now().UTC()):
	default:
		a.log.Warn().Str("appointment_id", ap.ID.String()).Msg("receipt queue full, dropping")
	}
}

func (a *Archiver) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() { close(a.queue) })
	<-a.done
}
