package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
)

var (
	_ edomain.Sender           = (*SES)(nil)
	_ edomain.IdentityProvider = (*SES)(nil)
)

// sesAPI is the subset of the SES client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	VerifyEmailIdentity(ctx context.Context, in *ses.VerifyEmailIdentityInput, optFns ...func(*ses.Options)) (*ses.VerifyEmailIdentityOutput, error)
	VerifyDomainIdentity(ctx context.Context, in *ses.VerifyDomainIdentityInput, optFns ...func(*ses.Options)) (*ses.VerifyDomainIdentityOutput, error)
	ListIdentities(ctx context.Context, in *ses.ListIdentitiesInput, optFns ...func(*ses.Options)) (*ses.ListIdentitiesOutput, error)
	GetIdentityVerificationAttributes(ctx context.Context, in *ses.GetIdentityVerificationAttributesInput, optFns ...func(*ses.Options)) (*ses.GetIdentityVerificationAttributesOutput, error)
	DeleteIdentity(ctx context.Context, in *ses.DeleteIdentityInput, optFns ...func(*ses.Options)) (*ses.DeleteIdentityOutput, error)
}

// GetIdentityVerificationAttributes accepts at most 100 identities per call.
const sesAttributesBatch = 100

// SES sends mail and manages identities through Amazon SES.
type SES struct {
	api sesAPI
}

// NewSES builds an SES client from the default AWS chain, preferring static
// credentials when both key parts are configured.
func NewSES(ctx context.Context, cfg config.Config) (*SES, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SES{api: ses.NewFromConfig(awsCfg)}, nil
}

func newSESWithAPI(api sesAPI) *SES { return &SES{api: api} }

func (s *SES) Send(ctx context.Context, _ uuid.UUID, m edomain.Message) error {
	_, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.From),
		Destination: &sestypes.Destination{ToAddresses: []string{m.To}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(m.Body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func (s *SES) RequestVerification(ctx context.Context, emailAddress string) error {
	if _, err := s.api.VerifyEmailIdentity(ctx, &ses.VerifyEmailIdentityInput{EmailAddress: aws.String(emailAddress)}); err != nil {
		return fmt.Errorf("ses verify email identity: %w", err)
	}
	return nil
}

func (s *SES) RequestDomainVerification(ctx context.Context, domain string) (edomain.DNSRecord, error) {
	out, err := s.api.VerifyDomainIdentity(ctx, &ses.VerifyDomainIdentityInput{Domain: aws.String(domain)})
	if err != nil {
		return edomain.DNSRecord{}, fmt.Errorf("ses verify domain identity: %w", err)
	}
	return edomain.DNSRecord{
		Name:  "_amazonses." + domain,
		Type:  "TXT",
		Value: aws.ToString(out.VerificationToken),
	}, nil
}

// VerifiedIdentities lists every identity on the account and keeps those whose
// verification status is Success.
func (s *SES) VerifiedIdentities(ctx context.Context) (edomain.IdentitySet, error) {
	var all []string
	pages := ses.NewListIdentitiesPaginator(s.api, &ses.ListIdentitiesInput{})
	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ses list identities: %w", err)
		}
		all = append(all, out.Identities...)
	}

	verified := edomain.NewIdentitySet()
	for start := 0; start < len(all); start += sesAttributesBatch {
		end := min(start+sesAttributesBatch, len(all))
		out, err := s.api.GetIdentityVerificationAttributes(ctx, &ses.GetIdentityVerificationAttributesInput{
			Identities: all[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("ses verification attributes: %w", err)
		}
		for id, attr := range out.VerificationAttributes {
			if attr.VerificationStatus == sestypes.VerificationStatusSuccess {
				verified[normalizeIdentity(id)] = struct{}{}
			}
		}
	}
	return verified, nil
}

func (s *SES) DeleteIdentity(ctx context.Context, identity string) error {
	if _, err := s.api.DeleteIdentity(ctx, &ses.DeleteIdentityInput{Identity: aws.String(identity)}); err != nil {
		return fmt.Errorf("ses delete identity: %w", err)
	}
	return nil
}
