//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"tidepool/server/catalog"
	"tidepool/server/internal/oddsim"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type oddsRequest struct {
	Rarity string `json:"rarity"`
	Count  int    `json:"count"`
	Seed   string `json:"seed"`
}

func handler(cat *catalog.Catalog) func(context.Context, events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	return func(_ context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
		body := event.Body
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				return errResp(400, "invalid base64 body")
			}
			body = string(decoded)
		}

		var req oddsRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return errResp(400, "invalid JSON: "+err.Error())
		}
		rarity, err := catalog.ParseRarity(req.Rarity)
		if err != nil {
			return errResp(400, err.Error())
		}

		report, err := oddsim.Simulate(cat, oddsim.Request{Rarity: rarity, Count: req.Count, Seed: req.Seed})
		switch {
		case errors.Is(err, oddsim.ErrInvalidCount):
			return errResp(400, err.Error())
		case errors.Is(err, catalog.ErrUnknownCrate):
			return errResp(404, err.Error())
		case err != nil:
			return errResp(500, err.Error())
		}

		respJSON, _ := json.Marshal(report)
		return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
	}
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	cat, err := catalog.Load(os.Getenv("TIDEPOOL_CATALOG_OVERRIDES"))
	if err != nil {
		panic(err)
	}
	lambda.Start(handler(cat))
}
