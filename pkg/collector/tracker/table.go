package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// DefaultPartition groups all dataset entities in the metadata table.
const DefaultPartition = "scraper"

// TableStore keeps run times in Azure Table Storage, one entity per
// dataset keyed by (DefaultPartition, dataset name).
type TableStore struct {
	service *aztables.ServiceClient
	client  *aztables.Client
	table   string
	ensured bool
}

// runEntity is the stored shape of a run record.
type runEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	LastRun      string `json:"LastRun"`
}

// NewTableStore connects to the table service with a connection string.
// The table is created on the first write if it does not exist.
func NewTableStore(connectionString, table string) (*TableStore, error) {
	service, err := aztables.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to table service: %w", err)
	}
	return &TableStore{
		service: service,
		client:  service.NewClient(table),
		table:   table,
	}, nil
}

// Table returns the table name.
func (s *TableStore) Table() string {
	return s.table
}

func (s *TableStore) LastRun(ctx context.Context, name string) (time.Time, bool, error) {
	resp, err := s.client.GetEntity(ctx, DefaultPartition, name, nil)
	if isStatus(err, http.StatusNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get entity %q: %w", name, err)
	}
	return decodeEntity(resp.Value)
}

func (s *TableStore) SetLastRun(ctx context.Context, name string, t time.Time) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	body, err := encodeEntity(name, t)
	if err != nil {
		return err
	}
	_, err = s.client.UpsertEntity(ctx, body, &aztables.UpsertEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return fmt.Errorf("upsert entity %q: %w", name, err)
	}
	return nil
}

// Ping checks that the table service answers, without writing.
func (s *TableStore) Ping(ctx context.Context) error {
	pager := s.service.NewListTablesPager(nil)
	if _, err := pager.NextPage(ctx); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	return nil
}

func (s *TableStore) ensureTable(ctx context.Context) error {
	if s.ensured {
		return nil
	}
	_, err := s.service.CreateTable(ctx, s.table, nil)
	if err != nil && !isStatus(err, http.StatusConflict) {
		return fmt.Errorf("create table %q: %w", s.table, err)
	}
	s.ensured = true
	return nil
}

func encodeEntity(name string, t time.Time) ([]byte, error) {
	return json.Marshal(runEntity{
		PartitionKey: DefaultPartition,
		RowKey:       name,
		LastRun:      formatTimestamp(t),
	})
}

func decodeEntity(raw []byte) (time.Time, bool, error) {
	var e runEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return time.Time{}, false, fmt.Errorf("decode entity: %w", err)
	}
	t, ok := parseTimestamp(e.LastRun)
	return t, ok, nil
}

func isStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
