package server

import (
	"strings"

	"github.com/go-ble/ble"

	"github.com/Krajiyah/ble-services/pkg/gatt"
	"github.com/Krajiyah/ble-services/pkg/util"
)

func getAddrFromReq(req ble.Request) string {
	return strings.ToUpper(req.Conn().RemoteAddr().String())
}

func getService(server *BLEServer, def gatt.ServiceDef) *ble.Service {
	service := ble.NewService(util.ToBLE(def.UUID))
	for _, c := range def.Characteristics {
		service.AddCharacteristic(constructChar(server, def.Name, c))
	}
	return service
}

func constructChar(server *BLEServer, service string, def gatt.CharacteristicDef) *ble.Characteristic {
	c := ble.NewCharacteristic(util.ToBLE(def.UUID))
	value, _ := server.table.Find(service, def.Name, gatt.KindValue)
	if def.Properties.Read() {
		c.HandleRead(ble.ReadHandlerFunc(generateReadHandler(server, service, def.Name, value.Handle)))
	}
	if def.Properties.Write() {
		c.HandleWrite(ble.WriteHandlerFunc(generateWriteHandler(server, service, def.Name, value.Handle)))
	}
	if def.Properties.Notify() {
		ccc, _ := server.table.Find(service, def.Name, gatt.KindClientConfig)
		c.HandleNotify(ble.NotifyHandlerFunc(generateNotifyHandler(server, service, def.Name, ccc.Handle, value.Handle)))
	}
	if def.Description != "" {
		c.NewDescriptor(ble.UUID16(util.UserDescriptionUUID)).SetValue([]byte(def.Description))
	}
	if len(def.Format) != 0 {
		c.NewDescriptor(ble.UUID16(util.PresentationFormatUUID)).SetValue(def.Format)
	}
	return c
}

func generateReadHandler(server *BLEServer, service, characteristic string, handle uint16) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		var data []byte
		err := util.CatchErrs(func() error {
			var e error
			data, e = server.table.Read(handle, req.Offset(), rsp.Cap())
			return e
		})
		if err != nil {
			server.reject(service, characteristic, err)
			rsp.SetStatus(ble.ATTError(gatt.AccessCode(err)))
			return
		}
		rsp.Write(data)
	}
}

// the darwin backend serves writes without a response writer
func generateWriteHandler(server *BLEServer, service, characteristic string, handle uint16) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		err := util.CatchErrs(func() error {
			_, e := server.table.Write(handle, req.Data(), req.Offset())
			return e
		})
		if err == nil {
			return
		}
		server.reject(service, characteristic, err)
		if rsp != nil {
			rsp.SetStatus(ble.ATTError(gatt.AccessCode(err)))
		}
	}
}

// generateNotifyHandler is run by go-ble once per peer enabling notifications and lasts
// until that peer disables them or disconnects.
func generateNotifyHandler(server *BLEServer, service, characteristic string, ccc, handle uint16) func(req ble.Request, n ble.Notifier) {
	return func(req ble.Request, n ble.Notifier) {
		addr := getAddrFromReq(req)
		server.subscribe(service, characteristic, ccc, handle, addr, n)
		select {
		case <-n.Context().Done():
		case <-req.Conn().Disconnected():
		}
		server.unsubscribe(service, characteristic, ccc, handle, addr, n)
	}
}
