package arize

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/redpanda-data/benthos/v4/public/service"
)

const (
	tlsFieldEnabled        = "enabled"
	tlsFieldSkipCertVerify = "skip_cert_verify"
	tlsFieldCertFile       = "cert_file"
	tlsFieldKeyFile        = "key_file"
)

func tlsClientConfigFields() []*service.ConfigField {
	return []*service.ConfigField{
		service.NewBoolField(tlsFieldEnabled).
			Description("Enable TLS connections to the collector. Endpoints with an `https` scheme always use TLS.").
			Default(false),
		service.NewBoolField(tlsFieldSkipCertVerify).
			Description("Skip certificate verification (insecure).").
			Default(false),
		service.NewStringField(tlsFieldCertFile).
			Description("Path to the TLS certificate file for client authentication.").
			Default(""),
		service.NewStringField(tlsFieldKeyFile).
			Description("Path to the TLS key file for client authentication.").
			Default(""),
	}
}

// TLSConfig configures the connection to the collector.
type TLSConfig struct {
	Enabled        bool
	SkipCertVerify bool
	CertFile       string
	KeyFile        string
}

// Validate checks that a client certificate is fully specified.
func (c TLSConfig) Validate() error {
	if c.Enabled && (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("both cert_file and key_file must be provided when either is set")
	}
	return nil
}

// ClientConfig builds the crypto/tls config, or returns nil when TLS is not
// enabled.
func (c TLSConfig) ClientConfig() (*tls.Config, error) {
	if !c.Enabled {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tlsConf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.SkipCertVerify,
	}
	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS certificate: %w", err)
		}
		tlsConf.Certificates = []tls.Certificate{cert}
	}
	return tlsConf, nil
}

func parseTLSClientConfig(pConf *service.ParsedConfig) (tlsConf TLSConfig, err error) {
	if tlsConf.Enabled, err = pConf.FieldBool(tlsFieldEnabled); err != nil {
		return
	}
	if tlsConf.SkipCertVerify, err = pConf.FieldBool(tlsFieldSkipCertVerify); err != nil {
		return
	}
	if tlsConf.CertFile, err = pConf.FieldString(tlsFieldCertFile); err != nil {
		return
	}
	if tlsConf.KeyFile, err = pConf.FieldString(tlsFieldKeyFile); err != nil {
		return
	}
	if err = tlsConf.Validate(); err != nil {
		return
	}
	return tlsConf, nil
}
