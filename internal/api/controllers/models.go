package controllers

import "github.com/mbarden/gopull/internal/domain"

type CreateTransferRequest struct {
	URL     string `json:"url"`
	Dest    string `json:"dest,omitempty"`
	Workers int    `json:"workers,omitempty"`
}

type TransferResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Status       string  `json:"status"`
	TotalBytes   int64   `json:"total_bytes"`
	BytesWritten int64   `json:"bytes_written"`
	Percent      float64 `json:"percent"`
	Error        string  `json:"error,omitempty"`
}

func NewTransferResponse(item *domain.QueueItem) TransferResponse {
	resp := TransferResponse{
		ID:           item.ID,
		Name:         item.Name,
		Status:       string(item.Status),
		TotalBytes:   item.TotalBytes,
		BytesWritten: item.Downloaded(),
		Error:        item.Error,
	}
	if item.Job != nil {
		resp.URL = item.Job.URL
	}
	// Percent stays zero when the total size is unknown.
	if item.TotalBytes > 0 {
		resp.Percent = float64(resp.BytesWritten) / float64(item.TotalBytes) * 100
	}
	return resp
}
