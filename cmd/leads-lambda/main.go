// Command leads-lambda serves the lead intake API from AWS Lambda behind
// API Gateway, backed by the DynamoDB repository.
package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/inkwell-tutoring/inkwell-platform/cmd/mainconfig"
	"github.com/inkwell-tutoring/inkwell-platform/internal/api/router"
	appconfig "github.com/inkwell-tutoring/inkwell-platform/internal/config"
	"github.com/inkwell-tutoring/inkwell-platform/internal/leads"
	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

func buildRouter(ctx context.Context) (http.Handler, error) {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	repo := leads.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.LeadsTable, logger)
	handler := leads.NewHandler(repo, nil, nil, logger)

	return router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       handler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}), nil
}

// proxyHandler translates API Gateway proxy events to plain HTTP requests
// against the router.
func proxyHandler(h http.Handler) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := event.Body
		if event.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(event.Body)
			if err != nil {
				return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
			}
			body = string(decoded)
		}

		target := event.Path
		if len(event.QueryStringParameters) > 0 {
			values := url.Values{}
			for k, v := range event.QueryStringParameters {
				values.Set(k, v)
			}
			target += "?" + values.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, event.HTTPMethod, target, strings.NewReader(body))
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
		}
		for k, v := range event.Headers {
			req.Header.Set(k, v)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		// MultiValueHeaders preserves repeated headers such as the Vary
		// entries added by the CORS and compression middleware.
		return events.APIGatewayProxyResponse{
			StatusCode:        rec.Code,
			MultiValueHeaders: rec.Header(),
			Body:              rec.Body.String(),
		}, nil
	}
}

func main() {
	h, err := buildRouter(context.Background())
	if err != nil {
		panic(err)
	}
	lambda.Start(proxyHandler(h))
}
