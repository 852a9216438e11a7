package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue by the API and
// consumed by the email worker.
type EmailJob struct {
	To       string `json:"to"`
	FullName string `json:"fullname"`
	Greeting string `json:"greeting,omitempty"`
}
