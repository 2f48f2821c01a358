package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxAttempts    = 3

	TypeGeneric             = "generic"
	TypeClassBooking        = "class_booking"
	TypeClassCancellation   = "class_cancellation"
	TypeCheckOutSummary     = "checkout_summary"
	TypeSubscriptionReceipt = "subscription_receipt"
	TypeExpiryReminder      = "expiry_reminder"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string

	retryDelay time.Duration
}

// New builds the mailer on top of rdb, which also backs the job queue.
func New(rdb *redis.Client, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass string) *Service {
	return &Service{
		redis:      rdb,
		from:       fromEmail,
		fromName:   fromName,
		smtpHost:   smtpHost,
		smtpPort:   smtpPort,
		smtpUser:   smtpUser,
		smtpPass:   smtpPass,
		retryDelay: 5 * time.Second,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{Type: TypeGeneric, To: to, Name: name, Subject: subject, Body: body})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	job.Tries = 0
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", job.To, err)
		metrics.RecordEmail(job.Type, "queue_failed")
		return err
	}

	metrics.RecordEmail(job.Type, "queued")
	logger.Info("Email queued", "type", job.Type, "to", job.To)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)
		s.retryOrFail(ctx, job, err)
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) retryOrFail(ctx context.Context, job EmailJob, sendErr error) {
	if job.Tries < maxAttempts {
		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
		}
		data, _ := json.Marshal(job)
		s.redis.LPush(context.Background(), queueKey, string(data))
		logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		return
	}

	logger.Errorf("Email to %s failed after %d attempts", job.To, maxAttempts)
	metrics.RecordEmail(job.Type, "failed")
	s.saveFailed(job, sendErr)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendClassBookingConfirmation(ctx context.Context, email, name, className string, when time.Time) error {
	body := fmt.Sprintf(`Hi %s,

Your spot in %s is confirmed.

Time: %s

See you at the gym!`, name, className, when.Format("Jan 2, 2006 at 3:04 PM"))

	return s.enqueue(ctx, EmailJob{
		Type:    TypeClassBooking,
		To:      email,
		Name:    name,
		Subject: "Class booked - " + className,
		Body:    body,
	})
}

func (s *Service) SendClassCancellation(ctx context.Context, email, name, className string, when time.Time) error {
	body := fmt.Sprintf(`Hi %s,

Your booking for %s on %s has been cancelled.`, name, className, when.Format("Jan 2, 2006 at 3:04 PM"))

	return s.enqueue(ctx, EmailJob{
		Type:    TypeClassCancellation,
		To:      email,
		Name:    name,
		Subject: "Booking cancelled - " + className,
		Body:    body,
	})
}

func (s *Service) SendCheckOutSummary(ctx context.Context, email, name string, checkIn, checkOut time.Time, durationMinutes int) error {
	body := fmt.Sprintf(`Hi %s,

Thanks for training with us today.

Checked in:  %s
Checked out: %s
Session:     %d min`, name,
		checkIn.Format("Jan 2, 2006 at 3:04 PM"),
		checkOut.Format("Jan 2, 2006 at 3:04 PM"),
		durationMinutes)

	return s.enqueue(ctx, EmailJob{
		Type:    TypeCheckOutSummary,
		To:      email,
		Name:    name,
		Subject: "Your workout summary",
		Body:    body,
	})
}

func (s *Service) SendSubscriptionReceipt(ctx context.Context, email, name, planName string, priceCents int64, endDate *time.Time) error {
	validity := "no end date"
	if endDate != nil {
		validity = "valid until " + endDate.Format("Jan 2, 2006")
	}
	body := fmt.Sprintf(`Hi %s,

Your %s membership is active (%s).
Amount paid: %d.%02d`, name, planName, validity, priceCents/100, priceCents%100)

	return s.enqueue(ctx, EmailJob{
		Type:    TypeSubscriptionReceipt,
		To:      email,
		Name:    name,
		Subject: "Membership activated - " + planName,
		Body:    body,
	})
}

func (s *Service) SendExpiryReminder(ctx context.Context, email, name, planName string, endDate time.Time) error {
	body := fmt.Sprintf(`Hi %s,

Your %s membership ends on %s.
Renew before then to keep your access.`, name, planName, endDate.Format("Jan 2, 2006 at 3:04 PM"))

	return s.enqueue(ctx, EmailJob{
		Type:    TypeExpiryReminder,
		To:      email,
		Name:    name,
		Subject: "Your membership ends soon",
		Body:    body,
	})
}
