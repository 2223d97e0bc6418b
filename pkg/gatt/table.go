package gatt

import (
	"encoding/binary"
	"fmt"

	"github.com/bradfitz/slice"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/ble-services/pkg/util"
)

// AttributeKind classifies an entry of the attribute table
type AttributeKind int

const (
	KindService AttributeKind = iota
	KindCharacteristic
	KindValue
	KindClientConfig
	KindUserDescription
	KindPresentationFormat
)

var attributeKindNames = map[AttributeKind]string{
	KindService:            "service",
	KindCharacteristic:     "characteristic",
	KindValue:              "value",
	KindClientConfig:       "ccc",
	KindUserDescription:    "user_desc",
	KindPresentationFormat: "format",
}

func (k AttributeKind) String() string {
	s := attributeKindNames[k]
	if s == "" {
		return "???"
	}
	return s
}

// Attribute is one addressable row of the table
type Attribute struct {
	Handle         uint16
	Kind           AttributeKind
	Type           uuid.UUID
	Service        string
	Characteristic string
	Permissions    Permission

	read  ReadHandler
	write WriteHandler
}

func (a *Attribute) String() string {
	return fmt.Sprintf("handle=%d kind=%s type=%s svc=%s chr=%s",
		a.Handle, a.Kind, util.ShortString(a.Type), a.Service, a.Characteristic)
}

// Table is the attribute table consumed by a transport collaborator. It is built once,
// before any operation is routed, and is immutable afterwards.
type Table struct {
	attrs    map[uint16]*Attribute
	subs     []*Subscription
	services []ServiceDef
	next     uint16
}

// NewTable validates defs, assigns ATT handles in declaration order and binds every
// notifier to its value handle and t.
func NewTable(t Transport, defs ...ServiceDef) (*Table, error) {
	tbl := &Table{attrs: map[uint16]*Attribute{}, next: 1}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if err := tbl.addService(t, def); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func (tbl *Table) add(a *Attribute) (uint16, error) {
	if tbl.next == 0 {
		return 0, errors.New("attribute table is full")
	}
	a.Handle = tbl.next
	tbl.next++
	if _, ok := tbl.attrs[a.Handle]; ok {
		return 0, errors.Errorf("Attribute with duplicate ATT handle: %d", a.Handle)
	}
	tbl.attrs[a.Handle] = a
	return a.Handle, nil
}

func staticRead(value []byte) ReadHandler {
	return func(offset int, capacity int) ([]byte, error) {
		return readValue(value, offset, capacity)
	}
}

func (tbl *Table) addService(t Transport, def ServiceDef) error {
	svc := &Attribute{
		Kind:        KindService,
		Type:        util.UUID16(0x2800),
		Service:     def.Name,
		Permissions: PermRead,
		read:        staticRead(uuidBytes(def.UUID)),
	}
	if _, err := tbl.add(svc); err != nil {
		return err
	}

	for _, c := range def.Characteristics {
		decl := &Attribute{
			Kind:           KindCharacteristic,
			Type:           util.UUID16(0x2803),
			Service:        def.Name,
			Characteristic: c.Name,
			Permissions:    PermRead,
		}
		if _, err := tbl.add(decl); err != nil {
			return err
		}

		val := &Attribute{
			Kind:           KindValue,
			Type:           c.UUID,
			Service:        def.Name,
			Characteristic: c.Name,
			Permissions:    c.Permissions,
		}
		if c.Properties.Read() {
			val.read = c.Read
		}
		if c.Properties.Write() {
			val.write = c.Write
		}
		valHandle, err := tbl.add(val)
		if err != nil {
			return err
		}
		decl.read = staticRead(declarationValue(c.Properties, valHandle, c.UUID))

		if c.Notify != nil {
			sub := c.Notify.sub
			ccc := &Attribute{
				Kind:           KindClientConfig,
				Type:           util.UUID16(util.ClientConfigUUID),
				Service:        def.Name,
				Characteristic: c.Name,
				Permissions:    PermRead | PermWrite,
				read:           sub.readConfig,
				write:          sub.writeConfig,
			}
			if _, err := tbl.add(ccc); err != nil {
				return err
			}
			c.Notify.bind(t, valHandle)
			tbl.subs = append(tbl.subs, sub)
		}

		if c.Description != "" {
			if _, err := tbl.add(&Attribute{
				Kind:           KindUserDescription,
				Type:           util.UUID16(util.UserDescriptionUUID),
				Service:        def.Name,
				Characteristic: c.Name,
				Permissions:    PermRead,
				read:           staticRead([]byte(c.Description)),
			}); err != nil {
				return err
			}
		}

		if len(c.Format) != 0 {
			if _, err := tbl.add(&Attribute{
				Kind:           KindPresentationFormat,
				Type:           util.UUID16(util.PresentationFormatUUID),
				Service:        def.Name,
				Characteristic: c.Name,
				Permissions:    PermRead,
				read:           staticRead(c.Format),
			}); err != nil {
				return err
			}
		}
	}

	tbl.services = append(tbl.services, def)
	return nil
}

// uuidBytes renders u in attribute protocol byte order
func uuidBytes(u uuid.UUID) []byte {
	if short, ok := util.Short16(u); ok {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, short)
		return b
	}
	b := make([]byte, len(u))
	for i := range u {
		b[len(u)-1-i] = u[i]
	}
	return b
}

func declarationValue(p Property, valHandle uint16, u uuid.UUID) []byte {
	b := []byte{byte(p), 0, 0}
	binary.LittleEndian.PutUint16(b[1:], valHandle)
	return append(b, uuidBytes(u)...)
}

// Services returns the definitions the table was built from
func (tbl *Table) Services() []ServiceDef {
	return tbl.services
}

// Lookup returns the attribute at handle
func (tbl *Table) Lookup(handle uint16) (*Attribute, bool) {
	a, ok := tbl.attrs[handle]
	return a, ok
}

// Find returns the attribute of the given kind that belongs to a characteristic
func (tbl *Table) Find(service, characteristic string, kind AttributeKind) (*Attribute, bool) {
	for _, a := range tbl.attrs {
		if a.Service == service && a.Characteristic == characteristic && a.Kind == kind {
			return a, true
		}
	}
	return nil, false
}

// Attributes lists the table ordered by handle
func (tbl *Table) Attributes() []Attribute {
	ret := make([]Attribute, 0, len(tbl.attrs))
	for _, a := range tbl.attrs {
		ret = append(ret, *a)
	}
	slice.Sort(ret, func(i, j int) bool {
		return ret[i].Handle < ret[j].Handle
	})
	return ret
}

// Read routes a peer read to the attribute at handle
func (tbl *Table) Read(handle uint16, offset int, capacity int) ([]byte, error) {
	a, ok := tbl.attrs[handle]
	if !ok {
		log.Debugf("Attribute read, unknown handle: %d", handle)
		return nil, FmtAccessError(ErrInvalidHandle, "no attribute at handle %d", handle)
	}
	if a.read == nil || !a.Permissions.Read() {
		log.Debugf("Attribute read, not permitted: %s", a.String())
		return nil, FmtAccessError(ErrReadNotPermitted, "%s is not readable", a.String())
	}
	log.Debugf("Attribute read, %s offset=%d", a.String(), offset)
	return a.read(offset, capacity)
}

// Write routes a peer write to the attribute at handle
func (tbl *Table) Write(handle uint16, data []byte, offset int) (int, error) {
	a, ok := tbl.attrs[handle]
	if !ok {
		log.Debugf("Attribute write, unknown handle: %d", handle)
		return 0, FmtAccessError(ErrInvalidHandle, "no attribute at handle %d", handle)
	}
	if a.write == nil || !a.Permissions.Write() {
		log.Debugf("Attribute write, not permitted: %s", a.String())
		return 0, FmtAccessError(ErrWriteNotPermitted, "%s is not writable", a.String())
	}
	log.Debugf("Attribute write, %s len=%d offset=%d", a.String(), len(data), offset)
	return a.write(data, offset)
}

// Reset accepts a connection reset from the transport: every subscription is disabled.
func (tbl *Table) Reset() {
	for _, s := range tbl.subs {
		s.reset()
	}
}
