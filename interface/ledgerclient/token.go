package ledgerclient

import (
	"bytes"
	"distributor/domain"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// TokenClient talks to an external fungible-token ledger service and
// implements domain.TokenLedger. The account field is the identity the
// client spends from on plain transfers, normally the custody account.
type TokenClient struct {
	baseUrl    string
	account    string
	httpClient *http.Client
}

func NewTokenClient(baseUrl string, account string) *TokenClient {
	return &TokenClient{
		baseUrl: baseUrl,
		account: account,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type balanceResponse struct {
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

func (client *TokenClient) Transfer(to string, amount *big.Int) error {
	return client.requestTransfer(client.account, to, amount)
}

func (client *TokenClient) TransferFrom(from, to string, amount *big.Int) error {
	return client.requestTransfer(from, to, amount)
}

func (client *TokenClient) requestTransfer(from, to string, amount *big.Int) error {
	body, err := json.Marshal(transferRequest{From: from, To: to, Amount: amount.String()})
	if err != nil {
		return err
	}

	resp, err := client.httpClient.Post(client.baseUrl+"/transfers", "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.WithMessage(domain.ErrorCollaboratorFailure, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusPaymentRequired, http.StatusConflict:
		// The ledger cannot cover the transfer from the sender's balance.
		return domain.ErrorInsufficientBalance
	default:
		return errors.WithMessage(domain.ErrorCollaboratorFailure,
			fmt.Sprintf("transfer rejected with status %v", resp.StatusCode))
	}
}

func (client *TokenClient) BalanceOf(owner string) (*big.Int, error) {
	resp, err := client.httpClient.Get(client.baseUrl + "/balances/" + owner)
	if err != nil {
		return nil, errors.WithMessage(domain.ErrorCollaboratorFailure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithMessage(domain.ErrorCollaboratorFailure,
			fmt.Sprintf("balance query rejected with status %v", resp.StatusCode))
	}

	var parsed balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.WithMessage(domain.ErrorCollaboratorFailure, err.Error())
	}

	balance, ok := new(big.Int).SetString(parsed.Balance, 10)
	if !ok {
		return nil, errors.WithMessage(domain.ErrorCollaboratorFailure,
			fmt.Sprintf("unparsable balance %q", parsed.Balance))
	}
	return balance, nil
}
