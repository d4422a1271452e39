package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var maxDevices int = 1000
var readingsPerDevice int = 5
var httpHostPort string = "127.0.0.1:1080"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

var emittedCount atomic.Int64

func main() {
	deviceIDs := make([]string, maxDevices)
	for i := 0; i < maxDevices; i++ {
		deviceIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device IDs\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			postReadings(deviceIDs[i])
			fmt.Printf("\rposted readings for device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	total := maxDevices * readingsPerDevice
	fmt.Printf(
		"\rposted %v readings for %v devices: used time=%v seconds, throughput=%v reading/second, emitted=%v\n",
		total, maxDevices, usedTime.Seconds(), float64(total)/usedTime.Seconds(), emittedCount.Load(),
	)
}

// postReadings sends a draining battery curve so early readings stay above
// the threshold and the tail exercises the gate's emit path.
func postReadings(deviceID string) {
	level := 90 + int(rnd.Int31n(10))
	for j := 0; j < readingsPerDevice; j++ {
		level -= 15 + int(rnd.Int31n(10))
		if level < 0 {
			level = 0
		}
		postBattery(deviceID, level)
		time.Sleep(time.Duration(100+rnd.Int31n(1000)) * time.Millisecond)
	}
}

func postBattery(deviceID string, level int) {
	payload := map[string]int{
		"battery_level": level,
	}
	jsonData, _ := json.Marshal(payload)

	resp, err := http.Post(
		fmt.Sprintf("http://%s/devices/%s/battery", httpHostPort, deviceID),
		"application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("\nresponse status code != 200: %v\n", resp)
		return
	}

	var body struct {
		Emitted bool `json:"emitted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Emitted {
		emittedCount.Add(1)
	}
}
