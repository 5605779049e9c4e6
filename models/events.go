package models

import "errors"

// EventType discriminates scan stream events.
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventResult   EventType = "result"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Event is one JSON-serializable scan stream message. Exactly which fields
// are populated depends on Type; the wire shapes are:
//
//	{type:"start",    total_cids:N}
//	{type:"progress", step:i, total:N, cid:label}
//	{type:"result",   data:{cid,url,prices,status,process_time}}
//	{type:"error",    cid:label, error:message, code?:ERROR_CODE}
//	{type:"complete", total_results:N, total_prices_found:M, lowest?:{...}}
//
// The count fields on "complete" are pointers so a legitimate zero is still
// serialized instead of being dropped by omitempty.
type Event struct {
	Type EventType `json:"type"`

	// start
	TotalCIDs int `json:"total_cids,omitempty"`

	// progress
	Step  int    `json:"step,omitempty"`
	Total int    `json:"total,omitempty"`
	CID   string `json:"cid,omitempty"`

	// result
	Data *ExtractionResult `json:"data,omitempty"`

	// error (variant-level)
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`

	// complete
	TotalResults     *int         `json:"total_results,omitempty"`
	TotalPricesFound *int         `json:"total_prices_found,omitempty"`
	Lowest           *LowestPrice `json:"lowest,omitempty"`
}

// StartEvent opens a scan stream with the variant count.
func StartEvent(totalCIDs int) Event {
	return Event{Type: EventStart, TotalCIDs: totalCIDs}
}

// ProgressEvent announces that variant step/total is about to be processed.
func ProgressEvent(step, total int, cid string) Event {
	return Event{Type: EventProgress, Step: step, Total: total, CID: cid}
}

// ResultEvent wraps a finished variant's extraction result.
func ResultEvent(data *ExtractionResult) Event {
	return Event{Type: EventResult, Data: data}
}

// ErrorEvent reports a variant-level failure without ending the stream.
// A ScanError anywhere in the chain contributes its error code; other errors
// are reported bare.
func ErrorEvent(cid string, err error) Event {
	ev := Event{Type: EventError, CID: cid, Error: err.Error()}
	var se *ScanError
	if errors.As(err, &se) {
		detail := se.ToDetail()
		ev.Code = detail.Code
		ev.Error = detail.Message
		if se.Err != nil {
			ev.Error = detail.Message + ": " + se.Err.Error()
		}
	}
	return ev
}

// CompleteEvent terminates a scan stream with aggregate counts.
func CompleteEvent(totalResults, totalPricesFound int, lowest *LowestPrice) Event {
	return Event{
		Type:             EventComplete,
		TotalResults:     &totalResults,
		TotalPricesFound: &totalPricesFound,
		Lowest:           lowest,
	}
}
