package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mintbay/nft-marketplace/internal/config"
	"github.com/mintbay/nft-marketplace/internal/messenger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var client *retryablehttp.Client

func main() {
	config.Init("cli")

	client = retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "marketplace API base url"},
			&cli.StringFlag{Name: "wallet", Value: "", Usage: "wallet address acting as the caller"},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list an NFT for sale",
				Action: listNft,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
					&cli.StringFlag{Name: "price", Required: true, Usage: "asking price in native currency"},
				},
			},
			{
				Name:   "reprice",
				Usage:  "change the price of an active listing",
				Action: repriceNft,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
					&cli.StringFlag{Name: "price", Required: true, Usage: "new asking price"},
				},
			},
			{
				Name:   "unlist",
				Usage:  "cancel a listing and reclaim the token",
				Action: unlistNft,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
				},
			},
			{
				Name:   "buy",
				Usage:  "buy a listed NFT",
				Action: buyNft,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
					&cli.StringFlag{Name: "value", Required: true, Usage: "attached payment"},
				},
			},
			{
				Name:   "get",
				Usage:  "show the stored listing for a token",
				Action: getListing,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
				},
			},
			{
				Name:   "fee",
				Usage:  "show or change the marketplace fee percentage",
				Action: fee,
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "set", Value: 0, Usage: "new fee percentage (owner only)"},
				},
			},
			{
				Name:   "create-collection",
				Usage:  "register a collection with the custodian directory",
				Action: createCollection,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
				},
			},
			{
				Name:   "mint",
				Usage:  "mint a token into a collection",
				Action: mintToken,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contract", Required: true, Usage: "collection contract address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
					&cli.StringFlag{Name: "owner", Required: true, Usage: "initial token owner"},
				},
			},
			{
				Name:   "deposit",
				Usage:  "deposit native currency into an account",
				Action: deposit,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true, Usage: "account address"},
					&cli.StringFlag{Name: "amount", Required: true, Usage: "amount to credit"},
				},
			},
			{
				Name:   "events",
				Usage:  "tail marketplace events from the message broker",
				Action: tailEvents,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "item", Value: "listing.sold", Usage: "routing key to consume"},
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func listNft(c *cli.Context) error {
	return post(c, "/listings", map[string]interface{}{
		"contract": c.String("contract"),
		"tokenId":  c.Uint64("token"),
		"price":    c.String("price"),
	})
}

func repriceNft(c *cli.Context) error {
	path := fmt.Sprintf("/listings/%s/%d/price", c.String("contract"), c.Uint64("token"))
	return put(c, path, map[string]interface{}{"price": c.String("price")})
}

func unlistNft(c *cli.Context) error {
	path := fmt.Sprintf("/listings/%s/%d", c.String("contract"), c.Uint64("token"))
	return request(c, http.MethodDelete, path, nil)
}

func buyNft(c *cli.Context) error {
	path := fmt.Sprintf("/listings/%s/%d/purchase", c.String("contract"), c.Uint64("token"))
	return post(c, path, map[string]interface{}{"value": c.String("value")})
}

func getListing(c *cli.Context) error {
	path := fmt.Sprintf("/listings/%s/%d", c.String("contract"), c.Uint64("token"))
	return request(c, http.MethodGet, path, nil)
}

func fee(c *cli.Context) error {
	if c.IsSet("set") {
		return put(c, "/fee", map[string]interface{}{"percentage": c.Uint("set")})
	}
	return request(c, http.MethodGet, "/fee", nil)
}

func createCollection(c *cli.Context) error {
	return post(c, "/collections", map[string]interface{}{"contract": c.String("contract")})
}

func mintToken(c *cli.Context) error {
	path := fmt.Sprintf("/collections/%s/tokens", c.String("contract"))
	return post(c, path, map[string]interface{}{
		"owner":   c.String("owner"),
		"tokenId": c.Uint64("token"),
	})
}

func deposit(c *cli.Context) error {
	path := fmt.Sprintf("/accounts/%s/deposit", c.String("account"))
	return post(c, path, map[string]interface{}{"amount": c.String("amount")})
}

func tailEvents(c *cli.Context) error {
	messengerService := messenger.NewMessenger(config.Get().Amqp.Uri)

	zap.S().Infof("Consuming %s", c.String("item"))

	return messengerService.ConsumeMessages(messenger.Item(c.String("item")), func(msg string) {
		fmt.Println(msg)
	})
}

func post(c *cli.Context, path string, body map[string]interface{}) error {
	return request(c, http.MethodPost, path, body)
}

func put(c *cli.Context, path string, body map[string]interface{}) error {
	return request(c, http.MethodPut, path, body)
}

func request(c *cli.Context, method, path string, body map[string]interface{}) error {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req, err := retryablehttp.NewRequest(method, c.String("api")+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if wallet := c.String("wallet"); wallet != "" {
		req.Header.Set("X-Wallet-Address", wallet)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, _ := ioutil.ReadAll(resp.Body)
	fmt.Printf("%s %s\n", resp.Status, string(responseBody))

	return nil
}
