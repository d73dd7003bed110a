// Package db persists analysis results to DynamoDB. Optional: nothing here
// runs unless ANALYSIS_TABLE is set.
package db

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/stegomidi/stegomidi/constants"
	"github.com/stegomidi/stegomidi/model"
)

func newClient() (*dynamodb.DynamoDB, error) {
	endpoint := constants.GetDynamoEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("db: creating session: %w", err)
	}
	return dynamodb.New(sess), nil
}

// PutAnalysisRecord stores the headline numbers of one analysis keyed by
// its ID.
func PutAnalysisRecord(res model.AnalysisResult) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	item := map[string]*dynamodb.AttributeValue{
		"PK":      {S: aws.String(res.ID)},
		"Overall": {N: aws.String(strconv.FormatFloat(res.Overall, 'f', 4, 64))},
		"Risk":    {S: aws.String(string(res.Risk))},
		"Notes":   {N: aws.String(strconv.Itoa(res.Stats.NoteCount))},
	}
	_, err = client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(constants.GetAnalysisTable()),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("db: putting analysis record: %w", err)
	}
	return nil
}

// AnalysisRecord is the stored summary of a past analysis.
type AnalysisRecord struct {
	ID      string  `json:"id"`
	Overall float64 `json:"overall"`
	Risk    string  `json:"risk"`
	Notes   int     `json:"notes"`
}

// GetAnalysisRecord fetches one stored summary, or nil when absent.
func GetAnalysisRecord(id string) (*AnalysisRecord, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	out, err := client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(constants.GetAnalysisTable()),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("db: getting analysis record: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var rec AnalysisRecord
	rec.ID = id
	if v := out.Item["Overall"]; v != nil && v.N != nil {
		rec.Overall, _ = strconv.ParseFloat(*v.N, 64)
	}
	if v := out.Item["Risk"]; v != nil && v.S != nil {
		rec.Risk = *v.S
	}
	if v := out.Item["Notes"]; v != nil && v.N != nil {
		rec.Notes, _ = strconv.Atoi(*v.N)
	}
	return &rec, nil
}
