package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    MongoURI       string // MongoDB connection string
    MongoDB        string // MongoDB database name
    JWTSecret      string // secret used to sign session tokens
    SessionTTLMin  int    // session cookie time-to-live in minutes
    BcryptCost     int    // bcrypt cost for password hashing
    FrontendOrigin string // origin allowed for cross-origin requests with credentials

    // Avatar object storage (S3 compatible, e.g. MinIO).  PublicBaseURL is the
    // externally reachable prefix under which uploaded objects can be fetched;
    // the object key is appended to it when building the avatar URL.
    S3Endpoint      string
    S3Region        string
    S3Bucket        string
    S3AccessKey     string
    S3SecretKey     string
    S3PublicBaseURL string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),              // environment (dev/test/prod)
        Port:           must("APP_PORT"),             // port to bind the HTTP server
        MongoURI:       must("MONGO_URI"),            // document database connection string
        MongoDB:        must("MONGO_DB"),             // database name
        JWTSecret:      must("JWT_SECRET"),           // secret used for signing session tokens
        SessionTTLMin:  intOr("SESSION_TTL_MIN", 60), // cookie lifetime, defaults to one hour
        BcryptCost:     mustInt("BCRYPT_COST"),       // bcrypt cost factor
        FrontendOrigin: must("FRONTEND_ORIGIN"),      // allowed CORS origin

        S3Endpoint:      must("S3_ENDPOINT"),
        S3Region:        must("S3_REGION"),
        S3Bucket:        must("S3_BUCKET"),
        S3AccessKey:     must("S3_ACCESS_KEY"),
        S3SecretKey:     must("S3_SECRET_KEY"),
        S3PublicBaseURL: must("S3_PUBLIC_BASE_URL"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// intOr reads an optional integer variable, falling back to def when the
// variable is unset and exiting when it is set but not a number.
func intOr(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
