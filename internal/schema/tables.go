// Package schema declares the Postgres tables the migrator keeps in sync.
package schema

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// HospitalsColumns holds the columns for the "hospitals" table.
	HospitalsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "street_name", Type: field.TypeString, Nullable: true},
		{Name: "street_number", Type: field.TypeString, Nullable: true, Size: 32},
		{Name: "city", Type: field.TypeString, Nullable: true},
		{Name: "country", Type: field.TypeString, Nullable: true},
		{Name: "optional_address", Type: field.TypeString, Nullable: true},
		{Name: "logo_path", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "admin_veterinarian_id", Type: field.TypeInt64, Nullable: true},
	}
	// HospitalsTable holds the schema information for the "hospitals" table.
	HospitalsTable = &schema.Table{
		Name:       "hospitals",
		Columns:    HospitalsColumns,
		PrimaryKey: []*schema.Column{HospitalsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "hospitals_veterinarians_administered",
				Columns:    []*schema.Column{HospitalsColumns[9]},
				RefColumns: []*schema.Column{VeterinariansColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "hospital_name", Unique: false, Columns: []*schema.Column{HospitalsColumns[1]}},
		},
	}

	// VeterinariansColumns holds the columns for the "veterinarians" table.
	VeterinariansColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 320},
		{Name: "phone_number", Type: field.TypeString, Nullable: true, Size: 32},
		{Name: "phone_country_code", Type: field.TypeString, Nullable: true, Size: 8},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "license_id", Type: field.TypeString, Size: 64},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "hospital_id", Type: field.TypeInt64, Nullable: true},
	}
	// VeterinariansTable holds the schema information for the "veterinarians" table.
	VeterinariansTable = &schema.Table{
		Name:       "veterinarians",
		Columns:    VeterinariansColumns,
		PrimaryKey: []*schema.Column{VeterinariansColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "veterinarians_hospitals_members",
				Columns:    []*schema.Column{VeterinariansColumns[8]},
				RefColumns: []*schema.Column{HospitalsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "veterinarian_hospital_id", Unique: false, Columns: []*schema.Column{VeterinariansColumns[8]}},
		},
	}

	// HorsesColumns holds the columns for the "horses" table.
	HorsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "birth_date", Type: field.TypeTime, Nullable: true, SchemaType: map[string]string{dialect.Postgres: "date"}},
		{Name: "profile_picture_path", Type: field.TypeString, Nullable: true},
		{Name: "picture_right_front_path", Type: field.TypeString, Nullable: true},
		{Name: "picture_left_front_path", Type: field.TypeString, Nullable: true},
		{Name: "picture_right_hind_path", Type: field.TypeString, Nullable: true},
		{Name: "picture_left_hind_path", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "veterinarian_id", Type: field.TypeInt64, Nullable: true},
	}
	// HorsesTable holds the schema information for the "horses" table.
	HorsesTable = &schema.Table{
		Name:       "horses",
		Columns:    HorsesColumns,
		PrimaryKey: []*schema.Column{HorsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "horses_veterinarians_horses",
				Columns:    []*schema.Column{HorsesColumns[9]},
				RefColumns: []*schema.Column{VeterinariansColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "horse_veterinarian_id", Unique: false, Columns: []*schema.Column{HorsesColumns[9]}},
		},
	}

	// ClientsColumns holds the columns for the "clients" table.
	ClientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "email", Type: field.TypeString, Nullable: true, Size: 320},
		{Name: "phone_number", Type: field.TypeString, Nullable: true, Size: 32},
		{Name: "phone_country_code", Type: field.TypeString, Nullable: true, Size: 8},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ClientsTable holds the schema information for the "clients" table.
	ClientsTable = &schema.Table{
		Name:       "clients",
		Columns:    ClientsColumns,
		PrimaryKey: []*schema.Column{ClientsColumns[0]},
	}

	// ClientHorsesColumns holds the columns for the "client_horses" table.
	ClientHorsesColumns = []*schema.Column{
		{Name: "is_owner", Type: field.TypeBool, Default: false},
		{Name: "client_id", Type: field.TypeInt64},
		{Name: "horse_id", Type: field.TypeInt64},
	}
	// ClientHorsesTable holds the schema information for the "client_horses" table.
	ClientHorsesTable = &schema.Table{
		Name:       "client_horses",
		Columns:    ClientHorsesColumns,
		PrimaryKey: []*schema.Column{ClientHorsesColumns[1], ClientHorsesColumns[2]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "client_horses_clients_client",
				Columns:    []*schema.Column{ClientHorsesColumns[1]},
				RefColumns: []*schema.Column{ClientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "client_horses_horses_horse",
				Columns:    []*schema.Column{ClientHorsesColumns[2]},
				RefColumns: []*schema.Column{HorsesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "clienthorse_horse_id", Unique: false, Columns: []*schema.Column{ClientHorsesColumns[2]}},
		},
	}

	// AppointmentsColumns holds the columns for the "appointments" table.
	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "lameness_right_front", Type: field.TypeInt, Nullable: true},
		{Name: "lameness_left_front", Type: field.TypeInt, Nullable: true},
		{Name: "lameness_right_hind", Type: field.TypeInt, Nullable: true},
		{Name: "lameness_left_hind", Type: field.TypeInt, Nullable: true},
		{Name: "bpm", Type: field.TypeInt, Nullable: true},
		{Name: "ecg_time", Type: field.TypeInt, Nullable: true},
		{Name: "muscle_tension_frequency", Type: field.TypeString, Nullable: true},
		{Name: "muscle_tension_stiffness", Type: field.TypeString, Nullable: true},
		{Name: "muscle_tension_r", Type: field.TypeString, Nullable: true},
		{Name: "comment", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "cbc_path", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "horse_id", Type: field.TypeInt64},
		{Name: "veterinarian_id", Type: field.TypeInt64},
	}
	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_horses_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[13]},
				RefColumns: []*schema.Column{HorsesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "appointments_veterinarians_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[14]},
				RefColumns: []*schema.Column{VeterinariansColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "appointment_horse_id_created_at", Unique: false, Columns: []*schema.Column{AppointmentsColumns[13], AppointmentsColumns[12]}},
		},
	}

	// MeasuresColumns holds the columns for the "measures" table.
	MeasuresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "date", Type: field.TypeTime, Nullable: true},
		{Name: "user_bw", Type: field.TypeInt, Nullable: true},
		{Name: "user_bcs", Type: field.TypeFloat64, Nullable: true},
		{Name: "algorithm_bw", Type: field.TypeFloat64, Nullable: true},
		{Name: "algorithm_bcs", Type: field.TypeFloat64, Nullable: true},
		{Name: "coordinates", Type: field.TypeJSON, Nullable: true, SchemaType: map[string]string{dialect.Postgres: "jsonb"}},
		{Name: "picture_path", Type: field.TypeString, Nullable: true},
		{Name: "favorite", Type: field.TypeBool, Default: false},
		{Name: "horse_id", Type: field.TypeInt64},
		{Name: "veterinarian_id", Type: field.TypeInt64, Nullable: true},
		{Name: "appointment_id", Type: field.TypeInt64, Nullable: true},
	}
	// MeasuresTable holds the schema information for the "measures" table.
	MeasuresTable = &schema.Table{
		Name:       "measures",
		Columns:    MeasuresColumns,
		PrimaryKey: []*schema.Column{MeasuresColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "measures_horses_measures",
				Columns:    []*schema.Column{MeasuresColumns[9]},
				RefColumns: []*schema.Column{HorsesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "measures_veterinarians_measures",
				Columns:    []*schema.Column{MeasuresColumns[10]},
				RefColumns: []*schema.Column{VeterinariansColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "measures_appointments_measures",
				Columns:    []*schema.Column{MeasuresColumns[11]},
				RefColumns: []*schema.Column{AppointmentsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "measure_horse_id_date", Unique: false, Columns: []*schema.Column{MeasuresColumns[9], MeasuresColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema, in creation order.
	Tables = []*schema.Table{
		HospitalsTable,
		VeterinariansTable,
		HorsesTable,
		ClientsTable,
		ClientHorsesTable,
		AppointmentsTable,
		MeasuresTable,
	}
)

func init() {
	HospitalsTable.ForeignKeys[0].RefTable = VeterinariansTable
	VeterinariansTable.ForeignKeys[0].RefTable = HospitalsTable
	HorsesTable.ForeignKeys[0].RefTable = VeterinariansTable
	ClientHorsesTable.ForeignKeys[0].RefTable = ClientsTable
	ClientHorsesTable.ForeignKeys[1].RefTable = HorsesTable
	AppointmentsTable.ForeignKeys[0].RefTable = HorsesTable
	AppointmentsTable.ForeignKeys[1].RefTable = VeterinariansTable
	MeasuresTable.ForeignKeys[0].RefTable = HorsesTable
	MeasuresTable.ForeignKeys[1].RefTable = VeterinariansTable
	MeasuresTable.ForeignKeys[2].RefTable = AppointmentsTable
}
