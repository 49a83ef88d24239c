// Package aztables stores project rows in Azure Table storage.
package aztables

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"adda/internal/domain"
	"adda/internal/ports"
)

// DefaultTableName is the table the project rows live in
const DefaultTableName = "DevOpsProjectsData"

// Table implements ports.ProjectTable over an Azure Storage table
type Table struct {
	client *aztables.Client
}

var _ ports.ProjectTable = (*Table)(nil)

// Open connects to the table named tableName, creating it when missing
func Open(ctx context.Context, connectionString, tableName string) (*Table, error) {
	if tableName == "" {
		tableName = DefaultTableName
	}

	service, err := aztables.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("aztables: invalid connection string: %w", err)
	}
	client := service.NewClient(tableName)

	if _, err := client.CreateTable(ctx, nil); err != nil && !hasStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("aztables: failed to create table %s: %w", tableName, err)
	}

	return &Table{client: client}, nil
}

// tableEntity is the JSON shape of a row. Property names match the rows
// written by earlier deployments.
type tableEntity struct {
	PartitionKey  string `json:"PartitionKey"`
	RowKey        string `json:"RowKey"`
	Name          string `json:"Name"`
	Selected      bool   `json:"Selected"`
	Deleted       bool   `json:"Deleted"`
	UpdatedAt     string `json:"UpdatedAt,omitempty"`
	UpdatedAtType string `json:"UpdatedAt@odata.type,omitempty"`
}

func marshalEntity(e *domain.ProjectEntity) ([]byte, error) {
	row := tableEntity{
		PartitionKey: e.PartitionKey,
		RowKey:       e.RowKey,
		Name:         e.Name,
		Selected:     e.Selected,
		Deleted:      e.Deleted,
	}
	if !e.UpdatedAt.IsZero() {
		row.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339Nano)
		row.UpdatedAtType = "Edm.DateTime"
	}
	return json.Marshal(row)
}

func unmarshalEntity(data []byte) (*domain.ProjectEntity, error) {
	var row tableEntity
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("aztables: invalid entity: %w", err)
	}
	e := &domain.ProjectEntity{
		PartitionKey: row.PartitionKey,
		RowKey:       row.RowKey,
		Name:         row.Name,
		Selected:     row.Selected,
		Deleted:      row.Deleted,
	}
	if row.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.UpdatedAt); err == nil {
			e.UpdatedAt = t
		}
	}
	return e, nil
}

func (t *Table) Get(ctx context.Context, partitionKey, rowKey string) (*domain.ProjectEntity, error) {
	resp, err := t.client.GetEntity(ctx, partitionKey, rowKey, nil)
	if hasStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("aztables: get %s/%s: %w", partitionKey, rowKey, err)
	}
	return unmarshalEntity(resp.Value)
}

func (t *Table) Add(ctx context.Context, e *domain.ProjectEntity) error {
	data, err := marshalEntity(e)
	if err != nil {
		return err
	}
	_, err = t.client.AddEntity(ctx, data, nil)
	if hasStatus(err, http.StatusConflict) {
		return fmt.Errorf("%s/%s: %w", e.PartitionKey, e.RowKey, ports.ErrEntityExists)
	}
	if err != nil {
		return fmt.Errorf("aztables: add %s/%s: %w", e.PartitionKey, e.RowKey, err)
	}
	return nil
}

func (t *Table) Update(ctx context.Context, e *domain.ProjectEntity) error {
	data, err := marshalEntity(e)
	if err != nil {
		return err
	}
	etag := azcore.ETagAny
	_, err = t.client.UpdateEntity(ctx, data, &aztables.UpdateEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
		IfMatch:    &etag,
	})
	if hasStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%s/%s: %w", e.PartitionKey, e.RowKey, ports.ErrEntityNotFound)
	}
	if err != nil {
		return fmt.Errorf("aztables: update %s/%s: %w", e.PartitionKey, e.RowKey, err)
	}
	return nil
}

func (t *Table) ListRowKeys(ctx context.Context, partitionKey string) ([]string, error) {
	var keys []string
	err := t.scan(ctx, partitionKey, "RowKey", func(data []byte) error {
		var row struct {
			RowKey string `json:"RowKey"`
		}
		if err := json.Unmarshal(data, &row); err != nil {
			return err
		}
		keys = append(keys, row.RowKey)
		return nil
	})
	return keys, err
}

func (t *Table) List(ctx context.Context, partitionKey string, filter domain.ProjectFilter) ([]domain.ProjectEntity, error) {
	var result []domain.ProjectEntity
	err := t.scan(ctx, partitionKey, "", func(data []byte) error {
		e, err := unmarshalEntity(data)
		if err != nil {
			return err
		}
		if filter.Matches(e) {
			result = append(result, *e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b domain.ProjectEntity) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.RowKey, b.RowKey))
	})
	return result, nil
}

func (t *Table) scan(ctx context.Context, partitionKey, selectFields string, fn func([]byte) error) error {
	opts := &aztables.ListEntitiesOptions{Filter: partitionFilter(partitionKey)}
	if selectFields != "" {
		opts.Select = &selectFields
	}

	pager := t.client.NewListEntitiesPager(opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("aztables: list %s: %w", partitionKey, err)
		}
		for _, data := range page.Entities {
			if err := fn(data); err != nil {
				return fmt.Errorf("aztables: list %s: %w", partitionKey, err)
			}
		}
	}
	return nil
}

func (t *Table) Close() error {
	return nil
}

// partitionFilter builds the OData filter for one partition
func partitionFilter(partitionKey string) *string {
	f := fmt.Sprintf("PartitionKey eq '%s'", strings.ReplaceAll(partitionKey, "'", "''"))
	return &f
}

func hasStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
