// vitals-sim posts a rotating set of patient snapshots to a running
// triage engine for local development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type vitals struct {
	Age              int     `json:"age"`
	HeartRate        int     `json:"heart_rate"`
	SystolicBP       int     `json:"systolic_bp"`
	SpO2             float64 `json:"spo2"`
	Temperature      float64 `json:"temperature"`
	Consciousness    string  `json:"consciousness"`
	DoctorAssessment string  `json:"doctor_assessment"`
}

var samples = []vitals{
	{Age: 34, HeartRate: 72, SystolicBP: 120, SpO2: 98, Temperature: 36.8, Consciousness: "alert", DoctorAssessment: "none"},
	{Age: 67, HeartRate: 95, SystolicBP: 105, SpO2: 91, Temperature: 38.4, Consciousness: "drowsy", DoctorAssessment: "moderate"},
	{Age: 45, HeartRate: 130, SystolicBP: 85, SpO2: 88, Temperature: 39.1, Consciousness: "confused", DoctorAssessment: "none"},
	{Age: 72, HeartRate: 48, SystolicBP: 185, SpO2: 93, Temperature: 37.2, Consciousness: "alert", DoctorAssessment: "moderate"},
	{Age: 29, HeartRate: 110, SystolicBP: 95, SpO2: 96, Temperature: 40.3, Consciousness: "unconscious", DoctorAssessment: "critical"},
}

func main() {
	target := flag.String("target", "http://localhost:8080/api/v1/triage", "triage endpoint URL")
	interval := flag.Duration("interval", 3*time.Second, "delay between requests")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	for i := 0; ; i++ {
		sample := samples[i%len(samples)]
		body, err := json.Marshal(sample)
		if err != nil {
			log.Fatalf("marshal sample: %v", err)
		}

		resp, err := client.Post(*target, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("post failed: %v", err)
			time.Sleep(*interval)
			continue
		}
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<14))
		resp.Body.Close()

		fmt.Printf("[%d] status=%d %s\n", i, resp.StatusCode, string(payload))
		time.Sleep(*interval)
	}
}
