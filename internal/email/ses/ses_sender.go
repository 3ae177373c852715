package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"dochub/internal/domain"
	"dochub/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendBatchSummary(ctx context.Context, toEmail string, summary domain.BatchSummary) error {
	subject := fmt.Sprintf("Batch %s finished: %d/%d documents processed",
		summary.JobID, summary.SuccessfulFiles, summary.TotalFiles)
	htmlBody := buildSummaryHTML(summary)
	textBody := buildSummaryText(summary)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildSummaryText(s domain.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s finished in %s.\n\n", s.JobID, s.Duration.Round(0))
	fmt.Fprintf(&b, "Total files: %d\nSuccessful:  %d\nFailed:      %d\n", s.TotalFiles, s.SuccessfulFiles, s.FailedFiles)
	if len(s.TopErrors) > 0 {
		b.WriteString("\nMost common errors:\n")
		for _, e := range s.TopErrors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	b.WriteString("\nDocHub")
	return b.String()
}

func buildSummaryHTML(s domain.BatchSummary) string {
	var errs strings.Builder
	if len(s.TopErrors) > 0 {
		errs.WriteString("<h3>Most common errors</h3><ul>")
		for _, e := range s.TopErrors {
			fmt.Fprintf(&errs, "<li>%s</li>", e)
		}
		errs.WriteString("</ul>")
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Batch processing finished</h2>
  <p>Batch <code>%s</code> finished in %s.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;">Total files</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Successful</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Failed</td><td>%d</td></tr>
  </table>
  %s
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">DocHub - Document Processing</p>
</body>
</html>`, s.JobID, s.Duration.Round(0), s.TotalFiles, s.SuccessfulFiles, s.FailedFiles, errs.String())
}
