package gatt

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Krajiyah/ble-services/pkg/util"
)

// Property is a characteristic property bit as declared in the characteristic declaration
type Property uint8

const (
	PropRead   Property = 0x02
	PropWrite  Property = 0x08
	PropNotify Property = 0x10
)

func (p Property) Read() bool   { return p&PropRead != 0 }
func (p Property) Write() bool  { return p&PropWrite != 0 }
func (p Property) Notify() bool { return p&PropNotify != 0 }

// Permission is the access level required on an attribute value
type Permission uint8

const (
	PermRead  Permission = 0x01
	PermWrite Permission = 0x02
)

func (p Permission) Read() bool  { return p&PermRead != 0 }
func (p Permission) Write() bool { return p&PermWrite != 0 }

// Identity is the stable UUID set of a service instance
type Identity struct {
	Service         uuid.UUID
	Characteristics map[string]uuid.UUID
}

type CharacteristicDef struct {
	Name        string
	UUID        uuid.UUID
	Properties  Property
	Permissions Permission

	// Description is exposed as a user description descriptor when non-empty.
	Description string
	// Format is exposed as a presentation format descriptor when non-empty.
	Format []byte

	Read   ReadHandler
	Write  WriteHandler
	Notify *Notifier
}

type ServiceDef struct {
	Name            string
	UUID            uuid.UUID
	Characteristics []CharacteristicDef
}

// Identity returns the UUIDs declared by d
func (d *ServiceDef) Identity() Identity {
	id := Identity{Service: d.UUID, Characteristics: map[string]uuid.UUID{}}
	for _, c := range d.Characteristics {
		id.Characteristics[c.Name] = c.UUID
	}
	return id
}

// Validate checks that every offered operation has a handler bound to it
func (d *ServiceDef) Validate() error {
	if d.UUID == uuid.Nil {
		return errors.Errorf("service %q has no UUID", d.Name)
	}
	seen := map[uuid.UUID]bool{}
	for _, c := range d.Characteristics {
		if err := c.validate(); err != nil {
			return errors.Wrapf(err, "service %q", d.Name)
		}
		if seen[c.UUID] {
			return errors.Errorf("service %q declares %s twice",
				d.Name, util.ShortString(c.UUID))
		}
		seen[c.UUID] = true
	}
	return nil
}

func (c *CharacteristicDef) validate() error {
	switch {
	case c.UUID == uuid.Nil:
		return errors.Errorf("characteristic %q has no UUID", c.Name)
	case c.Properties == 0:
		return errors.Errorf("characteristic %q offers no operation", c.Name)
	case c.Properties.Read() && (c.Read == nil || !c.Permissions.Read()):
		return errors.Errorf("characteristic %q is readable without read handler/permission", c.Name)
	case c.Properties.Write() && (c.Write == nil || !c.Permissions.Write()):
		return errors.Errorf("characteristic %q is writable without write handler/permission", c.Name)
	case c.Properties.Notify() && c.Notify == nil:
		return errors.Errorf("characteristic %q notifies without a notifier", c.Name)
	case !c.Properties.Notify() && c.Notify != nil:
		return errors.Errorf("characteristic %q has a notifier but no notify property", c.Name)
	}
	return nil
}
