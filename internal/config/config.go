package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Stripe struct {
		SecretKey  string `yaml:"secretKey"`
		PriceID    string `yaml:"priceID"`
		SuccessURL string `yaml:"successURL"`
		CancelURL  string `yaml:"cancelURL"`
	} `yaml:"stripe"`

	OpenAI struct {
		APIKey         string `yaml:"apiKey"`
		Model          string `yaml:"model"`
		PromptPath     string `yaml:"promptPath"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"openai"`

	Email struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		SenderName  string `yaml:"senderName"`
		SenderEmail string `yaml:"senderEmail"`
		UseTLS      bool   `yaml:"useTLS"`
	} `yaml:"email"`

	Audit struct {
		StorageRoot           string `yaml:"storageRoot"`
		SlitherBinary         string `yaml:"slitherBinary"`
		MythrilBinary         string `yaml:"mythrilBinary"`
		SlitherTimeoutSeconds int    `yaml:"slitherTimeoutSeconds"`
		MythrilTimeoutSeconds int    `yaml:"mythrilTimeoutSeconds"`
	} `yaml:"audit"`

	Report struct {
		BrandName  string `yaml:"brandName"`
		BrandColor string `yaml:"brandColor"`
		FooterText string `yaml:"footerText"`
	} `yaml:"report"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Audit.StorageRoot == "" {
		c.Audit.StorageRoot = "./workspaces"
	}
	if c.Audit.SlitherTimeoutSeconds == 0 {
		c.Audit.SlitherTimeoutSeconds = 120
	}
	if c.Audit.MythrilTimeoutSeconds == 0 {
		// Symbolic execution needs more headroom than structural analysis.
		c.Audit.MythrilTimeoutSeconds = 300
	}
	if c.OpenAI.TimeoutSeconds == 0 {
		c.OpenAI.TimeoutSeconds = 60
	}
	if c.Report.BrandName == "" {
		c.Report.BrandName = "Affordable Smart Contract Audits"
	}
	if c.Report.FooterText == "" {
		c.Report.FooterText = "Confidential. Generated by Affordable Smart Contract Audits."
	}
}

// Validate catches the misconfigurations that otherwise only surface mid-run.
func (c *Config) Validate() error {
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secretKey is required")
	}
	if c.Stripe.SuccessURL == "" || c.Stripe.CancelURL == "" {
		return fmt.Errorf("stripe.successURL and stripe.cancelURL are required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.apiKey is required")
	}
	if c.Email.Host == "" || c.Email.SenderEmail == "" {
		return fmt.Errorf("email.host and email.senderEmail are required")
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		return fmt.Errorf("minio.endpoint and minio.bucketName are required when minio is enabled")
	}
	return nil
}

func (c *Config) SlitherTimeout() time.Duration {
	return time.Duration(c.Audit.SlitherTimeoutSeconds) * time.Second
}

func (c *Config) MythrilTimeout() time.Duration {
	return time.Duration(c.Audit.MythrilTimeoutSeconds) * time.Second
}

func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}
