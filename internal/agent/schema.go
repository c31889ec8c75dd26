package agent

import "github.com/personalai/assistant/internal/llm"

// SchemaDescription grounds SQL generation. It is passed to the model verbatim.
const SchemaDescription = `CREATE TABLE departments (
    id SERIAL PRIMARY KEY,
    name VARCHAR(30) UNIQUE
)
CREATE TABLE hiring_personal (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255),
    age INT,
    gender CHAR
)
CREATE TABLE employees (
    id SERIAL PRIMARY KEY,
    name VARCHAR(40) NOT NULL,
    salary INT,
    dept_id INT REFERENCES departments (id),
    hiring_personal_id INT REFERENCES hiring_personal (id)
)
CREATE TABLE reservations (
    id SERIAL PRIMARY KEY,
    employee_id INT REFERENCES employees (id),
    start_date DATE,
    end_date DATE,
    reservation_type INT CHECK (reservation_type IN (1, 2, 3)), -- 1: vacation, 2: sick leave, 3: work
    shift_start TIME,
    shift_end TIME,
    work_date DATE
)
CREATE TABLE appointments (
    id SERIAL PRIMARY KEY,
    employee_id INT REFERENCES employees (id),
    title VARCHAR(100),
    description TEXT,
    start_time TIMESTAMP,
    end_time TIMESTAMP,
    status VARCHAR(50)
)
CREATE TABLE schedules (
    id SERIAL PRIMARY KEY,
    employee_id INT REFERENCES employees (id),
    appointment_id INT REFERENCES appointments (id),
    date DATE,
    start_time TIME,
    end_time TIME
)`

// Prompt templates. Placeholders are filled by llm.Prompt.Render.
const (
	IntentPrompt llm.Prompt = `Given the action description: '{action}', identify its intent based on the following categories and respond with only the intent name:
1. Viewing: actions that directly request to see appointments (e.g. 'show me tomorrow's appointments').
2. Booking: actions that request to create appointments (e.g. 'I want to book an appointment').
3. Querying Employee Data: actions involving questions about employee schedules or details (e.g. 'show me Artem's schedule' or 'how many employees work on Friday?').
4. Unrelated: any other action not fitting the above categories.
Respond with only the intent: 'Viewing', 'Booking', 'Querying Employee Data', or 'Unrelated'.`

	SQLPrompt llm.Prompt = `You are a chat database SQL generator for PostgreSQL. Here are the database schemas:
{schemas}

Generate a single query for the action: {action}
Ensure the query does not perform any delete, remove, drop, or alter operations to avoid harmful database changes.
Wrap the query in a ` + "```sql" + ` code block.`

	SummaryPrompt llm.Prompt = `We have this result from the database: {result}. Please generate a user-friendly message for the action: {action}.`

	CalendarPrompt llm.Prompt = `Given the following list of appointment data: {appointments}, convert it into a structured JSON format suitable for a calendar application. Respond with JSON only.`
)
