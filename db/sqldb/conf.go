package sqldb

type Conf struct {
	Type     string `json:"type"` // mysql, pgsql, duckdb
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	PW       string `json:"pw"`
	DB       string `json:"db"`
	TZ       string `json:"tz"`        // Connection Timezone
	DSN      string `json:"dsn"`       // To Overwrite Default DSN
	MaxConns int    `json:"max_conns"` // 0 = driver default of the impl
}
