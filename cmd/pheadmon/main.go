package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/smalldrop/phead.go/pkg/telemetry/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/phead/"
)

func init() {
	if val := os.Getenv("PHEAD_TELEMETRY_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	q.Sub("+/+/"+mqtt.MetaTopic, func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: gone", strings.TrimSuffix(topic, "/"+mqtt.MetaTopic))
			return
		}
		log.Printf("%s: %s", topic, string(payload))
	})
	q.Sub("+/+/"+mqtt.StateTopic, func(topic string, payload []byte) {
		msg, _, err := mqtt.DecodeState(payload)
		if err != nil {
			log.Printf("%s: bad state: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, msg.String())
	})
	<-(chan struct{})(nil)
}
