package resend

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	resend "github.com/resend/resend-go/v2"
)

// Service sends group invite mails and tracks who has been invited.
type Service struct {
	firebaseClient *firestore.Client
	rebaseClient   *resend.Client
	hostURL        string
}

// NewService creates a new empty service.
func NewService(firestoreClient *firestore.Client, hostURL string) *Service {
	resendKey := os.Getenv("RESEND_KEY")
	return &Service{
		firebaseClient: firestoreClient,
		rebaseClient:   resend.NewClient(resendKey),
		hostURL:        hostURL,
	}
}

func (s Service) SendInvite(ctx context.Context, request InviteRequest, groupName, inviteCode string) error {
	body := getEmailTemplate(groupName, inviteCode, fmt.Sprintf("%s/join/%s", s.hostURL, inviteCode))
	params := &resend.SendEmailRequest{
		From:    "onboarding@resend.dev",
		To:      []string{request.Email},
		Subject: fmt.Sprintf("You are invited to %s", groupName),
		Html:    body,
	}

	_, err := s.rebaseClient.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send invite mail: %v", err)
		return err
	}
	return nil
}

// RecordInvite appends the address to the group's invitedEmails array
// so repeated invites are visible to the group admin.
func (s Service) RecordInvite(ctx context.Context, groupID, email string) error {
	docRef := s.firebaseClient.Collection("groups").Doc(groupID)

	err := s.firebaseClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var invited []string
		if data, err := doc.DataAt("invitedEmails"); err == nil {
			if values, ok := data.([]interface{}); ok {
				for _, value := range values {
					if str, ok := value.(string); ok {
						invited = append(invited, str)
					}
				}
			}
		}

		for _, existing := range invited {
			if existing == email {
				// Already recorded, no update needed.
				return nil
			}
		}

		updated := append(invited, email)
		return tx.Update(docRef, []firestore.Update{
			{Path: "invitedEmails", Value: updated},
		})
	})
	if err != nil {
		log.Printf("Failed to record invite: %v", err)
		return err
	}

	return nil
}

func getEmailTemplate(groupName, inviteCode, url string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
        .code {
            font-size: 28px;
            letter-spacing: 4px;
            text-align: center;
            margin: 20px 0;
        }
        .button {
            display: block;
            width: 200px;
            height: 50px;
            margin: 20px auto;
            background-color: #007BFF;
            color: #ffffff;
            font-size: 16px;
            text-align: center;
            line-height: 50px;
            text-decoration: none;
            border-radius: 5px;
        }
        .button:hover {
            background-color: #0056b3;
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello,</h2>
        <p>You have been invited to the foosball group <strong>%s</strong>. Use this invite code:</p>
        <div class="code">%s</div>
        <a href="%s" class="button">Join group</a>
    </div>
</body>
</html>`, groupName, inviteCode, url)
}
