package boe

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/lumafin/credit-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client fetches the published Bank of England base rate. The rate is
// informational only; it never feeds back into account APRs, which move on
// the reward ladder alone.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new base rate client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.BaseRateURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetch retrieves the raw rate feed
func (c *Client) fetch() ([]byte, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("Base rate XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the most recent observation from the rate feed
func (c *Client) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	observations := doc.FindElements("//Cube/Observation")
	if len(observations) == 0 {
		return 0, fmt.Errorf("no rate observations found in XML")
	}

	latest := observations[len(observations)-1]
	value := latest.SelectAttr("OBS_VALUE")
	if value == nil {
		return 0, fmt.Errorf("observation value not found in XML")
	}

	var rate float64
	if _, err := fmt.Sscanf(value.Value, "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %v", err)
	}

	return rate, nil
}

// GetBaseRate retrieves the current base rate from the feed
func (c *Client) GetBaseRate() (float64, error) {
	body, err := c.fetch()
	if err != nil {
		return 0, err
	}

	rate, err := c.parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved base rate: %.2f%%", rate)
	return rate, nil
}
