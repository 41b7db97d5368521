package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	assessmentsStarted   atomic.Int64
	assessmentsCompleted atomic.Int64
	assessmentsFailed    atomic.Int64
	assessmentsLowConf   atomic.Int64
	readingsIngested     atomic.Int64
	readingsRejected     atomic.Int64
	reportsGenerated     atomic.Int64
)

func AssessmentStarted()      { assessmentsStarted.Add(1) }
func AssessmentCompleted()    { assessmentsCompleted.Add(1) }
func AssessmentFailed()       { assessmentsFailed.Add(1) }
func AssessmentLowConfidence() { assessmentsLowConf.Add(1) }
func ReadingsIngested(n int)  { readingsIngested.Add(int64(n)) }
func ReadingsRejected(n int)  { readingsRejected.Add(int64(n)) }
func ReportGenerated()        { reportsGenerated.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeCounter(w, "health_assessments_started_total", "Assessments started.", assessmentsStarted.Load())
	writeCounter(w, "health_assessments_completed_total", "Assessments completed successfully.", assessmentsCompleted.Load())
	writeCounter(w, "health_assessments_failed_total", "Assessments that failed.", assessmentsFailed.Load())
	writeCounter(w, "health_assessments_low_confidence_total", "Assessments flagged low-confidence by the completeness gate.", assessmentsLowConf.Load())
	writeCounter(w, "health_readings_ingested_total", "Measurement readings accepted.", readingsIngested.Load())
	writeCounter(w, "health_readings_rejected_total", "Measurement readings rejected at validation.", readingsRejected.Load())
	writeCounter(w, "health_reports_generated_total", "Reports rendered.", reportsGenerated.Load())
}

func writeCounter(w http.ResponseWriter, name, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n", name, value)
}
