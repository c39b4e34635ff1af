package main

import (
	"context"
	"flag"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/arcadecar/pkg/l1/comm/mqtt"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"

	_ "github.com/robotalks/arcadecar/pkg/joystick/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/arcade/"
)

func init() {
	if val := os.Getenv("ARCADE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = mqtt.WaitToken(ctx, q.Connect())
	cancel()
	if err != nil {
		glog.Exitf("connect %s: %v", mqttURL, err)
	}
	defer q.Close()

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			glog.Infof("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			glog.Warningf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		glog.Infof("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(msgs.SerializableMessage).Serializable().String())
	}))
	<-(chan struct{})(nil)
}
