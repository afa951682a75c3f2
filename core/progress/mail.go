package progress

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

const certificateTemplate = "certificate"

type certificateData struct {
	Name         string
	CategoryName string
	EarnedAt     time.Time
}

// NewCertificateMessage builds the e-mail congratulating `to` for completing a category,
// with a plain text certificate attached.
func NewCertificateMessage(to mail.Address, cert Certificate) (*core.EmailMessage, error) {
	name := to.Name
	if name == "" {
		name = to.Address
	}
	data := certificateData{Name: name, CategoryName: cert.CategoryName, EarnedAt: cert.EarnedAt}

	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("Certificate: %s", cert.CategoryName),
		TemplateName: certificateTemplate,
		TemplateData: data,
	}
	if err := msg.Attach(strings.NewReader(certificateText(data)), "certificate.txt", "text/plain"); err != nil {
		return nil, errors.Wrap(err, "attaching certificate")
	}
	return msg, nil
}

func certificateText(data certificateData) string {
	var b strings.Builder
	b.WriteString("CERTIFICATE OF COMPLETION\n\n")
	fmt.Fprintf(&b, "This certifies that %s\n", data.Name)
	fmt.Fprintf(&b, "has completed every lesson of %q\n", data.CategoryName)
	fmt.Fprintf(&b, "on %s.\n", data.EarnedAt.Format("January 2, 2006"))
	return b.String()
}
