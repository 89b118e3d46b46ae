package ledgerclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

// BadgeClient notifies the external membership-badge ledger about stake
// changes, so it can re-evaluate badge requirements. It implements
// domain.BadgeRegistry.
type BadgeClient struct {
	baseUrl    string
	httpClient *http.Client
}

func NewBadgeClient(baseUrl string) *BadgeClient {
	return &BadgeClient{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type stakeChangedNotice struct {
	Participant string `json:"participant"`
	Staked      string `json:"staked"`
}

func (client *BadgeClient) OnStakeChanged(participant string, staked *big.Int) error {
	body, err := json.Marshal(stakeChangedNotice{Participant: participant, Staked: staked.String()})
	if err != nil {
		return err
	}

	resp, err := client.httpClient.Post(client.baseUrl+"/stake-changes", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("stake-change notice rejected with status %v", resp.StatusCode)
	}
	return nil
}
