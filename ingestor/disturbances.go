package ingestor

import (
	"context"

	"github.com/lib/pq"

	"github.com/hajersmiai/trainwarehouse/dataobjects"
)

// ingestDisturbances fetches the current disturbance feed and records each
// entry. The feed repeats unresolved disturbances on every poll; the insert
// is idempotent by business key, so repeats are benign no-ops.
func (in *Ingestor) ingestDisturbances(ctx context.Context, summary *Summary) {
	records, err := in.client.Disturbances(ctx)
	if err != nil {
		in.log.Println("ingestDisturbances:", err)
		summary.ItemsFailed++
		return
	}

	for i := range records {
		record := &records[i]
		disturbance := &dataobjects.Disturbance{
			Code:        record.ID,
			Title:       nullable(record.Title),
			Description: nullable(record.Description),
			Type:        nullable(record.Type),
			Link:        nullable(record.Link),
			Attachment:  nullable(record.Attachment),
		}
		if reportedAt, ok := record.ReportedAt(); ok {
			disturbance.ReportedAt = pq.NullTime{Time: reportedAt, Valid: true}
		}
		if err := disturbance.Insert(in.node); err != nil {
			in.log.Println("ingestDisturbances:", record.ID, err)
			summary.ItemsFailed++
			continue
		}
		summary.DisturbancesProcessed++
	}
}
